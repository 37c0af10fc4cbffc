// Package rank holds the leaderboard rank and percentile arithmetic.
// The leaderboard queries feed it persisted aggregates; it performs no
// reads or writes of its own.
package rank

import "math"

// Metric names accepted by the leaderboard.
const (
	MetricPoints   = "points"
	MetricProjects = "projectsCompleted"
	MetricHours    = "hoursVolunteered"
)

// IsValidMetric checks if a value is a recognized leaderboard metric.
func IsValidMetric(metric string) bool {
	switch metric {
	case MetricPoints, MetricProjects, MetricHours:
		return true
	}
	return false
}

// Position computes a user's rank and percentile for a metric value.
//
//	rank       = 1 + count of users with a strictly greater value
//	percentile = round(100 * (total - rank + 1) / total)
//
// where total counts users with a metric value > 0. Percentile is 0 when
// total is 0. Tied values share the same rank.
func Position(value float64, others []float64) (rankPos, percentile int) {
	greater := 0
	total := 0
	for _, v := range others {
		if v > value {
			greater++
		}
		if v > 0 {
			total++
		}
	}
	return FromCounts(greater, total)
}

// FromCounts computes rank and percentile from pre-aggregated counts:
// the number of users with a strictly greater value and the number of
// users with a positive value. The leaderboard queries use this form so
// the counting can stay in the database.
func FromCounts(greater, total int) (rankPos, percentile int) {
	rankPos = 1 + greater
	if total == 0 {
		return rankPos, 0
	}
	percentile = int(math.Round(100 * float64(total-rankPos+1) / float64(total)))
	return rankPos, percentile
}
