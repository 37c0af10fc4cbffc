// Package inputval validates user-supplied field values. Normalization
// (trimming, case folding) happens in the normalize package before these
// checks run.
package inputval

import (
	"errors"
	"strings"
)

// ErrInvalid marks malformed or out-of-range input. Wrap it with
// fmt.Errorf("%w: ...") to add detail; respond maps it to 400.
var ErrInvalid = errors.New("invalid input")

// IsValidEmail checks a single bare email address (no display-name form).
// It is stricter than net/mail: no leading/trailing/consecutive dots in
// either part, no whitespace anywhere.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local, domain := email[:at], email[at+1:]

	if strings.ContainsAny(email, " \t<>") {
		return false
	}
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
			return false
		}
		if strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidStars checks an NGO review star rating.
func IsValidStars(stars int) bool {
	return stars >= 1 && stars <= 5
}

// IsValidPercentage checks a progress percentage before clamping is even
// attempted; handlers use the clamped value, this is for strict inputs.
func IsValidPercentage(pct int) bool {
	return pct >= 0 && pct <= 100
}
