// Package htmlsanitize strips unsafe HTML from user-authored content
// (progress update messages, NGO reviews, project descriptions) before it
// is stored.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

// policy allows basic formatting tags and safe links only.
var policy = bluemonday.UGCPolicy()

// Sanitize removes scripts, event handlers, and javascript: URLs while
// keeping benign formatting.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// Strict strips all HTML, returning plain text. Used for fields that are
// rendered verbatim (titles, names).
var strict = bluemonday.StrictPolicy()

// Text strips every tag from s.
func Text(s string) string {
	return strict.Sanitize(s)
}
