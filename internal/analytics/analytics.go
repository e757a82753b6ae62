// Package analytics derives organizational health signals from objectives,
// their check-in history and blockers. All functions take "now" explicitly.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/progress"
	"github.com/google/uuid"
)

const (
	// CheckinWindow is how far back a check-in still counts as recent.
	CheckinWindow = 14 * 24 * time.Hour
	// BehindMargin is the slack below expected progress before flagging.
	BehindMargin = 10
	// BlockerPenalty is subtracted from a department's score per open blocker.
	BlockerPenalty = 10
)

// ExpectedProgress is the linear time interpolation between start (0%) and
// end (100%), rounded to a whole percentage for reporting.
func ExpectedProgress(start, end, now time.Time) int {
	return progress.Clamp(int(math.Round(expectedPercent(start, end, now))))
}

// expectedPercent is the unrounded interpolation. Comparisons use it so an
// objective is never credited with the rounding.
func expectedPercent(start, end, now time.Time) float64 {
	if !now.After(start) {
		return 0
	}
	if !now.Before(end) {
		return 100
	}
	elapsed := now.Sub(start).Seconds()
	span := end.Sub(start).Seconds()
	return elapsed / span * 100
}

// HealthReport is the blended health score plus its components, all 0..100.
type HealthReport struct {
	Score                 int `json:"score"`
	AvgProgress           int `json:"avgProgress"`
	OnTrackRate           int `json:"onTrackRate"`
	BlockerResolutionRate int `json:"blockerResolutionRate"`
	CheckinRate           int `json:"checkinRate"`
	TotalObjectives       int `json:"totalObjectives"`
	OpenBlockers          int `json:"openBlockers"`
	ResolvedBlockers      int `json:"resolvedBlockers"`
}

// HealthScore computes round(0.4×avg + 0.2×onTrack + 0.2×blockerResolution + 0.2×checkin).
// Blockers and check-ins are expected to belong to the objective set.
func HealthScore(objectives []models.Objective, checkIns []models.CheckIn, blockers []models.Blocker, now time.Time) HealthReport {
	report := HealthReport{TotalObjectives: len(objectives)}

	var avg, onTrack, checkin float64
	if n := len(objectives); n > 0 {
		recent := recentCheckins(checkIns, now)
		var sum float64
		var onTrackCount, checkedIn int
		for _, o := range objectives {
			sum += float64(o.Progress)
			if float64(o.Progress) >= expectedPercent(o.StartDate, o.EndDate, now) {
				onTrackCount++
			}
			if recent[o.ID] {
				checkedIn++
			}
		}
		avg = sum / float64(n)
		onTrack = float64(onTrackCount) / float64(n) * 100
		checkin = float64(checkedIn) / float64(n) * 100
	}

	for _, b := range blockers {
		if b.Status == models.BlockerResolved {
			report.ResolvedBlockers++
		} else {
			report.OpenBlockers++
		}
	}
	resolution := 100.0
	if total := report.OpenBlockers + report.ResolvedBlockers; total > 0 {
		resolution = float64(report.ResolvedBlockers) / float64(total) * 100
	}

	report.AvgProgress = roundPct(avg)
	report.OnTrackRate = roundPct(onTrack)
	report.BlockerResolutionRate = roundPct(resolution)
	report.CheckinRate = roundPct(checkin)
	report.Score = roundPct(0.4*avg + 0.2*onTrack + 0.2*resolution + 0.2*checkin)
	return report
}

// RiskAssessment explains why an objective is or is not at risk.
type RiskAssessment struct {
	ObjectiveID      uuid.UUID  `json:"objectiveId"`
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	OwnerID          uuid.UUID  `json:"ownerId"`
	DepartmentID     *uuid.UUID `json:"departmentId"`
	Progress         int        `json:"progress"`
	ExpectedProgress int        `json:"expectedProgress"`
	IsBehind         bool       `json:"isBehind"`
	NoRecentCheckin  bool       `json:"noRecentCheckin"`
	HasOpenBlocker   bool       `json:"hasOpenBlocker"`
	LastCheckinAt    *time.Time `json:"lastCheckinAt"`
	AtRisk           bool       `json:"atRisk"`
}

// Assess evaluates the three risk factors for a single objective.
func Assess(o models.Objective, checkIns []models.CheckIn, blockers []models.Blocker, now time.Time) RiskAssessment {
	exact := expectedPercent(o.StartDate, o.EndDate, now)
	expected := progress.Clamp(int(math.Round(exact)))
	r := RiskAssessment{
		ObjectiveID:      o.ID,
		Title:            o.Title,
		Type:             o.Type,
		OwnerID:          o.OwnerID,
		DepartmentID:     o.DepartmentID,
		Progress:         o.Progress,
		ExpectedProgress: expected,
		IsBehind:         float64(o.Progress) < exact-BehindMargin,
		NoRecentCheckin:  true,
	}

	cutoff := now.Add(-CheckinWindow)
	for i := range checkIns {
		ci := checkIns[i]
		if ci.ObjectiveID != o.ID {
			continue
		}
		if r.LastCheckinAt == nil || ci.CreatedAt.After(*r.LastCheckinAt) {
			at := ci.CreatedAt
			r.LastCheckinAt = &at
		}
		if !ci.CreatedAt.Before(cutoff) {
			r.NoRecentCheckin = false
		}
	}
	for _, b := range blockers {
		if b.ObjectiveID == o.ID && b.Status == models.BlockerOpen {
			r.HasOpenBlocker = true
			break
		}
	}

	r.AtRisk = r.IsBehind || r.NoRecentCheckin || r.HasOpenBlocker
	return r
}

// AtRisk returns the flagged objectives, most behind first.
func AtRisk(objectives []models.Objective, checkIns []models.CheckIn, blockers []models.Blocker, now time.Time) []RiskAssessment {
	flagged := []RiskAssessment{}
	for _, o := range objectives {
		if r := Assess(o, checkIns, blockers, now); r.AtRisk {
			flagged = append(flagged, r)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].ExpectedProgress-flagged[i].Progress > flagged[j].ExpectedProgress-flagged[j].Progress
	})
	return flagged
}

// Point is one sample of a progress series.
type Point struct {
	Date     time.Time `json:"date"`
	Progress int       `json:"progress"`
}

// Series pairs the linear expected line with the recorded actual progress.
type Series struct {
	ObjectiveID uuid.UUID `json:"objectiveId"`
	Title       string    `json:"title"`
	Expected    []Point   `json:"expected"`
	Actual      []Point   `json:"actual"`
}

// Compare builds the expected-vs-actual series for one objective. The actual
// line is the ordered check-ins plus a final point at (now, current progress).
func Compare(o models.Objective, checkIns []models.CheckIn, now time.Time) Series {
	s := Series{
		ObjectiveID: o.ID,
		Title:       o.Title,
		Expected: []Point{
			{Date: o.StartDate, Progress: 0},
			{Date: o.EndDate, Progress: 100},
		},
	}

	ordered := make([]models.CheckIn, 0, len(checkIns))
	for _, ci := range checkIns {
		if ci.ObjectiveID == o.ID {
			ordered = append(ordered, ci)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.Before(ordered[j].CreatedAt) })

	s.Actual = make([]Point, 0, len(ordered)+1)
	for _, ci := range ordered {
		s.Actual = append(s.Actual, Point{Date: ci.CreatedAt, Progress: ci.Progress})
	}
	s.Actual = append(s.Actual, Point{Date: now, Progress: o.Progress})
	return s
}

// DepartmentStat is one heatmap cell.
type DepartmentStat struct {
	DepartmentID   uuid.UUID `json:"departmentId"`
	Name           string    `json:"name"`
	ObjectiveCount int       `json:"objectiveCount"`
	AvgProgress    int       `json:"avgProgress"`
	OpenBlockers   int       `json:"openBlockers"`
	HealthScore    int       `json:"healthScore"`
}

// DepartmentHealth is avgProgress − 10×openBlockers clamped to [0,100].
func DepartmentHealth(avgProgress, openBlockers int) int {
	return progress.Clamp(avgProgress - BlockerPenalty*openBlockers)
}

// DepartmentStats groups objectives by department in the order departments are given.
func DepartmentStats(departments []models.Department, objectives []models.Objective, blockers []models.Blocker) []DepartmentStat {
	byDept := make(map[uuid.UUID][]int)
	objDept := make(map[uuid.UUID]uuid.UUID)
	for _, o := range objectives {
		if o.DepartmentID == nil {
			continue
		}
		byDept[*o.DepartmentID] = append(byDept[*o.DepartmentID], o.Progress)
		objDept[o.ID] = *o.DepartmentID
	}

	openByDept := make(map[uuid.UUID]int)
	for _, b := range blockers {
		if b.Status != models.BlockerOpen {
			continue
		}
		if dept, ok := objDept[b.ObjectiveID]; ok {
			openByDept[dept]++
		}
	}

	stats := make([]DepartmentStat, 0, len(departments))
	for _, d := range departments {
		avg := progress.Mean(byDept[d.ID])
		open := openByDept[d.ID]
		stats = append(stats, DepartmentStat{
			DepartmentID:   d.ID,
			Name:           d.Name,
			ObjectiveCount: len(byDept[d.ID]),
			AvgProgress:    avg,
			OpenBlockers:   open,
			HealthScore:    DepartmentHealth(avg, open),
		})
	}
	return stats
}

func recentCheckins(checkIns []models.CheckIn, now time.Time) map[uuid.UUID]bool {
	cutoff := now.Add(-CheckinWindow)
	recent := make(map[uuid.UUID]bool)
	for _, ci := range checkIns {
		if !ci.CreatedAt.Before(cutoff) {
			recent[ci.ObjectiveID] = true
		}
	}
	return recent
}

func roundPct(v float64) int {
	return progress.Clamp(int(math.Round(v)))
}
