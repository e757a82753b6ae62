package analytics

import (
	"testing"
	"time"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	qStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	qEnd   = time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC) // ten days, 10% per day
)

func objective(progress int) models.Objective {
	return models.Objective{
		ID:        uuid.New(),
		Title:     "Grow revenue",
		Type:      models.ObjectiveCompany,
		Progress:  progress,
		StartDate: qStart,
		EndDate:   qEnd,
	}
}

func TestExpectedProgressBoundaries(t *testing.T) {
	assert.Equal(t, 0, ExpectedProgress(qStart, qEnd, qStart.Add(-time.Hour)))
	assert.Equal(t, 0, ExpectedProgress(qStart, qEnd, qStart))
	assert.Equal(t, 100, ExpectedProgress(qStart, qEnd, qEnd))
	assert.Equal(t, 100, ExpectedProgress(qStart, qEnd, qEnd.Add(24*time.Hour)))
	assert.Equal(t, 50, ExpectedProgress(qStart, qEnd, qStart.AddDate(0, 0, 5)))
	assert.Equal(t, 30, ExpectedProgress(qStart, qEnd, qStart.AddDate(0, 0, 3)))
}

func TestExpectedProgressIsMonotonic(t *testing.T) {
	prev := -1
	for h := -24; h <= 11*24; h += 6 {
		got := ExpectedProgress(qStart, qEnd, qStart.Add(time.Duration(h)*time.Hour))
		assert.GreaterOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
		prev = got
	}
}

func TestBehindMargin(t *testing.T) {
	now := qStart.AddDate(0, 0, 5) // expected 50
	checkIns := func(o models.Objective) []models.CheckIn {
		return []models.CheckIn{{ObjectiveID: o.ID, Progress: o.Progress, CreatedAt: now.Add(-time.Hour)}}
	}

	atMargin := objective(40)
	r := Assess(atMargin, checkIns(atMargin), nil, now)
	assert.Equal(t, 50, r.ExpectedProgress)
	assert.False(t, r.IsBehind)
	assert.False(t, r.AtRisk)

	pastMargin := objective(39)
	r = Assess(pastMargin, checkIns(pastMargin), nil, now)
	assert.True(t, r.IsBehind)
	assert.True(t, r.AtRisk)
}

func TestAssessFactors(t *testing.T) {
	now := qStart.AddDate(0, 0, 5)
	o := objective(80)

	stale := []models.CheckIn{{ObjectiveID: o.ID, Progress: 10, CreatedAt: now.Add(-15 * 24 * time.Hour)}}
	r := Assess(o, stale, nil, now)
	assert.True(t, r.NoRecentCheckin)
	require.NotNil(t, r.LastCheckinAt)
	assert.True(t, r.AtRisk)

	fresh := append(stale, models.CheckIn{ObjectiveID: o.ID, Progress: 80, CreatedAt: now.Add(-13 * 24 * time.Hour)})
	blockers := []models.Blocker{{ObjectiveID: o.ID, Status: models.BlockerOpen}}
	r = Assess(o, fresh, blockers, now)
	assert.False(t, r.NoRecentCheckin)
	assert.True(t, r.HasOpenBlocker)
	assert.False(t, r.IsBehind)
	assert.True(t, r.AtRisk)

	resolved := []models.Blocker{{ObjectiveID: o.ID, Status: models.BlockerResolved}}
	r = Assess(o, fresh, resolved, now)
	assert.False(t, r.AtRisk)
}

func TestAtRiskOrdersMostBehindFirst(t *testing.T) {
	now := qStart.AddDate(0, 0, 5)
	slightly, badly, healthy := objective(35), objective(5), objective(60)
	checkIns := []models.CheckIn{
		{ObjectiveID: slightly.ID, CreatedAt: now},
		{ObjectiveID: badly.ID, CreatedAt: now},
		{ObjectiveID: healthy.ID, CreatedAt: now},
	}

	flagged := AtRisk([]models.Objective{slightly, badly, healthy}, checkIns, nil, now)

	require.Len(t, flagged, 2)
	assert.Equal(t, badly.ID, flagged[0].ObjectiveID)
	assert.Equal(t, slightly.ID, flagged[1].ObjectiveID)
}

func TestHealthScore(t *testing.T) {
	now := qStart.AddDate(0, 0, 5) // expected 50
	onTrack, behind := objective(60), objective(20)
	checkIns := []models.CheckIn{{ObjectiveID: onTrack.ID, CreatedAt: now.Add(-time.Hour)}}
	blockers := []models.Blocker{
		{ObjectiveID: behind.ID, Status: models.BlockerOpen},
		{ObjectiveID: behind.ID, Status: models.BlockerResolved},
	}

	report := HealthScore([]models.Objective{onTrack, behind}, checkIns, blockers, now)

	assert.Equal(t, 40, report.AvgProgress)
	assert.Equal(t, 50, report.OnTrackRate)
	assert.Equal(t, 50, report.BlockerResolutionRate)
	assert.Equal(t, 50, report.CheckinRate)
	// 0.4×40 + 0.2×50 + 0.2×50 + 0.2×50
	assert.Equal(t, 46, report.Score)
	assert.Equal(t, 1, report.OpenBlockers)
	assert.Equal(t, 1, report.ResolvedBlockers)
}

func TestComparisonsIgnoreRounding(t *testing.T) {
	now := qStart.Add(120*time.Hour + 57*time.Minute + 36*time.Second) // 50.4%
	require.Equal(t, 50, ExpectedProgress(qStart, qEnd, now))

	report := HealthScore([]models.Objective{objective(50)}, nil, nil, now)
	assert.Equal(t, 0, report.OnTrackRate)

	r := Assess(objective(40), nil, nil, now)
	assert.Equal(t, 50, r.ExpectedProgress)
	assert.True(t, r.IsBehind)
}

func TestHealthScoreNoBlockersIsFullyResolved(t *testing.T) {
	now := qEnd.Add(time.Hour)
	done := objective(100)
	checkIns := []models.CheckIn{{ObjectiveID: done.ID, CreatedAt: now}}

	report := HealthScore([]models.Objective{done}, checkIns, nil, now)

	assert.Equal(t, 100, report.BlockerResolutionRate)
	assert.Equal(t, 100, report.Score)
}

func TestHealthScoreEmptySet(t *testing.T) {
	report := HealthScore(nil, nil, nil, qStart)
	assert.Equal(t, 0, report.TotalObjectives)
	assert.Equal(t, 100, report.BlockerResolutionRate)
	assert.Equal(t, 20, report.Score)
}

func TestCompare(t *testing.T) {
	now := qStart.AddDate(0, 0, 6)
	o := objective(55)
	other := uuid.New()
	checkIns := []models.CheckIn{
		{ObjectiveID: o.ID, Progress: 40, CreatedAt: qStart.AddDate(0, 0, 4)},
		{ObjectiveID: other, Progress: 99, CreatedAt: qStart.AddDate(0, 0, 1)},
		{ObjectiveID: o.ID, Progress: 10, CreatedAt: qStart.AddDate(0, 0, 1)},
	}

	s := Compare(o, checkIns, now)

	assert.Equal(t, []Point{{Date: qStart, Progress: 0}, {Date: qEnd, Progress: 100}}, s.Expected)
	require.Len(t, s.Actual, 3)
	assert.Equal(t, 10, s.Actual[0].Progress)
	assert.Equal(t, 40, s.Actual[1].Progress)
	assert.Equal(t, Point{Date: now, Progress: 55}, s.Actual[2])
}

func TestDepartmentStats(t *testing.T) {
	sales := models.Department{ID: uuid.New(), Name: "Sales"}
	ops := models.Department{ID: uuid.New(), Name: "Ops"}
	empty := models.Department{ID: uuid.New(), Name: "Legal"}

	a, b, c := objective(50), objective(70), objective(15)
	a.DepartmentID, b.DepartmentID, c.DepartmentID = &sales.ID, &sales.ID, &ops.ID
	blockers := []models.Blocker{
		{ObjectiveID: a.ID, Status: models.BlockerOpen},
		{ObjectiveID: b.ID, Status: models.BlockerResolved},
		{ObjectiveID: c.ID, Status: models.BlockerOpen},
		{ObjectiveID: c.ID, Status: models.BlockerOpen},
	}

	stats := DepartmentStats([]models.Department{sales, ops, empty}, []models.Objective{a, b, c}, blockers)

	require.Len(t, stats, 3)
	assert.Equal(t, DepartmentStat{DepartmentID: sales.ID, Name: "Sales", ObjectiveCount: 2, AvgProgress: 60, OpenBlockers: 1, HealthScore: 50}, stats[0])
	assert.Equal(t, 0, stats[1].HealthScore, "15 - 20 clamps to zero")
	assert.Equal(t, 0, stats[2].ObjectiveCount)
	assert.Equal(t, 0, stats[2].HealthScore)
}

func TestDepartmentHealthClamps(t *testing.T) {
	assert.Equal(t, 100, DepartmentHealth(100, 0))
	assert.Equal(t, 0, DepartmentHealth(5, 3))
	assert.Equal(t, 70, DepartmentHealth(90, 2))
}
