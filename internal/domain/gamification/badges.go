// Package gamification holds the badge-threshold and display-tier rules.
//
// Badges are cumulative: a user holds every badge whose threshold their
// point total has reached. The display tier is a separate derived value
// (highest matching band) and is never stored.
package gamification

// Threshold pairs a badge name with the point total that earns it.
type Threshold struct {
	Points int
	Name   string
}

// Thresholds lists the badge thresholds in ascending order.
var Thresholds = []Threshold{
	{Points: 100, Name: "First Steps"},
	{Points: 500, Name: "Bronze Contributor"},
	{Points: 1000, Name: "Silver Contributor"},
	{Points: 2000, Name: "Gold Contributor"},
	{Points: 5000, Name: "Platinum Contributor"},
}

// NewlyEarned returns the badge names that total qualifies for and that
// are not already in held. It never removes anything; calling it twice at
// the same total returns nothing the second time once the first result is
// persisted.
func NewlyEarned(total int, held []string) []string {
	have := make(map[string]struct{}, len(held))
	for _, name := range held {
		have[name] = struct{}{}
	}

	var earned []string
	for _, th := range Thresholds {
		if total < th.Points {
			break
		}
		if _, ok := have[th.Name]; !ok {
			earned = append(earned, th.Name)
		}
	}
	return earned
}

// Tier returns the display tier for a point total. This is not a badge:
// it is recomputed on every read and reflects only the highest band.
func Tier(total int) string {
	switch {
	case total >= 2000:
		return "Gold"
	case total >= 1000:
		return "Silver"
	case total >= 500:
		return "Bronze"
	default:
		return "Newcomer"
	}
}
