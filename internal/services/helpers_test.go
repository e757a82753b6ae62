package services

import (
	"testing"
	"time"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/testutil"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

// pinClock freezes Now and disables the cache for the duration of a test.
func pinClock(t *testing.T) {
	t.Helper()
	prevNow, prevCache := Now, Cache
	Now = func() time.Time { return fixedNow }
	Cache = nil
	t.Cleanup(func() {
		Now = prevNow
		Cache = prevCache
	})
}

func scopeOf(u models.User) Scope {
	return Scope{UserID: u.ID, Role: u.Role, DepartmentID: u.DepartmentID}
}

// seedObjective stores an objective with one key result per target.
func seedObjective(t *testing.T, db *gorm.DB, typ string, owner uuid.UUID, dept *uuid.UUID, targets ...float64) models.Objective {
	t.Helper()
	start, end, err := QuarterBounds("Q1", 2026)
	if err != nil {
		t.Fatalf("quarter bounds: %v", err)
	}
	obj := models.Objective{
		Title:        "Grow revenue",
		Type:         typ,
		OwnerID:      owner,
		DepartmentID: dept,
		Quarter:      "Q1",
		Year:         2026,
		StartDate:    start,
		EndDate:      end,
	}
	for i, target := range targets {
		obj.KeyResults = append(obj.KeyResults, models.KeyResult{
			Position:    i,
			Title:       "KR",
			TargetValue: target,
			Weight:      1,
		})
	}
	testutil.MustCreate(t, db, &obj)
	return obj
}

func seedTasks(t *testing.T, db *gorm.DB, krID uuid.UUID, statuses ...string) []models.Task {
	t.Helper()
	tasks := make([]models.Task, 0, len(statuses))
	for _, s := range statuses {
		id := krID
		task := models.Task{Title: "task", Status: s, KRID: &id}
		testutil.MustCreate(t, db, &task)
		tasks = append(tasks, task)
	}
	return tasks
}

func reloadKR(t *testing.T, db *gorm.DB, id uuid.UUID) models.KeyResult {
	t.Helper()
	var kr models.KeyResult
	if err := db.First(&kr, "id = ?", id).Error; err != nil {
		t.Fatalf("reload key result: %v", err)
	}
	return kr
}

func reloadObjective(t *testing.T, db *gorm.DB, id uuid.UUID) models.Objective {
	t.Helper()
	var o models.Objective
	if err := db.Preload("KeyResults", orderedKeyResults).First(&o, "id = ?", id).Error; err != nil {
		t.Fatalf("reload objective: %v", err)
	}
	return o
}

func seedTemplate(t *testing.T, db *gorm.DB, title string, krs ...models.KeyResultTemplate) models.ObjectiveTemplate {
	t.Helper()
	tpl := models.ObjectiveTemplate{Title: title, Description: title + " description", Priority: "HIGH", Tags: []string{"growth"}, KeyResults: krs}
	testutil.MustCreate(t, db, &tpl)
	return tpl
}

func ptr[T any](v T) *T { return &v }
