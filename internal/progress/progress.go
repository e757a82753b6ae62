// Package progress holds the arithmetic used to derive key result, KPI and
// objective progress. Everything here is a pure function of its inputs so the
// same leaf state always produces the same value.
package progress

import (
	"math"
	"time"
)

// Clamp bounds a percentage to [0,100].
func Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Ratio returns round(current/target × 100) clamped to [0,100].
// A non-positive target yields 0.
func Ratio(current, target float64) int {
	if target <= 0 {
		return 0
	}
	return Clamp(int(math.Round(current / target * 100)))
}

// FromTasks returns round(done/total × 100). ok is false when no task
// references the key result, in which case the caller keeps the prior value.
func FromTasks(done, total int) (p int, ok bool) {
	if total <= 0 {
		return 0, false
	}
	return Clamp(int(math.Round(float64(done) / float64(total) * 100))), true
}

// Weighted is one weighted progress sample.
type Weighted struct {
	Progress int
	Weight   int
}

// WeightedMean returns round(Σ p·w / Σ w). Non-positive weights count as 1.
// ok is false for an empty input.
func WeightedMean(samples []Weighted) (p int, ok bool) {
	if len(samples) == 0 {
		return 0, false
	}
	var sum, weights float64
	for _, s := range samples {
		w := s.Weight
		if w <= 0 {
			w = 1
		}
		sum += float64(s.Progress) * float64(w)
		weights += float64(w)
	}
	return Clamp(int(math.Round(sum / weights))), true
}

// Mean returns round(mean(values)), or 0 for an empty slice.
func Mean(values []int) int {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += v
	}
	return Clamp(int(math.Round(float64(total) / float64(len(values)))))
}

// CurrentValue converts a percentage back into target units.
func CurrentValue(p int, target float64) float64 {
	return math.Round(float64(p) / 100 * target)
}

const (
	statusActive    = "ACTIVE"
	statusCompleted = "COMPLETED"
	statusOverdue   = "OVERDUE"
)

// KPIStatus derives ACTIVE, COMPLETED or OVERDUE from progress and end date.
func KPIStatus(p int, end, now time.Time) string {
	switch {
	case p >= 100:
		return statusCompleted
	case !end.IsZero() && now.After(end):
		return statusOverdue
	default:
		return statusActive
	}
}
