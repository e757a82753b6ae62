package services

import (
	"context"
	"testing"
	"time"

	"github.com/arnold/okrs-api/internal/lifecycle"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePersonalObjective(t *testing.T) {
	pinClock(t)
	db := testutil.NewDB(t)
	sales := testutil.Department(t, db, "Sales")
	member := testutil.User(t, db, "Max", models.RoleMember, &sales)

	obj, err := CreatePersonalObjective(context.Background(), db, scopeOf(member), models.CreateObjectiveRequest{
		Title:   "Learn Go",
		Quarter: "Q2",
		Year:    2026,
		KeyResults: []models.KeyResultInput{
			{Title: "Finish the tour", TargetValue: 1},
			{Title: "Ship a service", TargetValue: 1, Weight: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ObjectivePersonal, obj.Type)
	assert.Equal(t, models.StatusDraft, obj.Status)
	assert.Equal(t, member.ID, obj.OwnerID)
	assert.Equal(t, sales.ID, *obj.DepartmentID)
	assert.Equal(t, "MEDIUM", obj.Priority)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), obj.StartDate)

	stored := reloadObjective(t, db, obj.ID)
	require.Len(t, stored.KeyResults, 2)
	assert.Equal(t, 1, stored.KeyResults[0].Weight)
	assert.Equal(t, 4, stored.KeyResults[1].Weight)

	_, err = CreatePersonalObjective(context.Background(), db, scopeOf(member), models.CreateObjectiveRequest{Title: "x", Quarter: "Q2", Year: 2026})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetObjectiveVisibility(t *testing.T) {
	pinClock(t)
	db := testutil.NewDB(t)
	sales := testutil.Department(t, db, "Sales")
	eng := testutil.Department(t, db, "Engineering")
	admin := testutil.User(t, db, "Admin", models.RoleAdmin, nil)
	salesManager := testutil.User(t, db, "Mia", models.RoleManager, &sales)
	engManager := testutil.User(t, db, "Eve", models.RoleManager, &eng)
	member := testutil.User(t, db, "Max", models.RoleMember, &sales)
	other := testutil.User(t, db, "Ola", models.RoleMember, &sales)

	personal := seedObjective(t, db, models.ObjectivePersonal, member.ID, ptr(sales.ID), 1)
	company := seedObjective(t, db, models.ObjectiveCompany, admin.ID, nil, 1)
	ctx := context.Background()

	for _, s := range []Scope{scopeOf(admin), scopeOf(salesManager), scopeOf(member)} {
		_, err := GetObjective(ctx, db, s, personal.ID)
		assert.NoError(t, err)
	}
	for _, s := range []Scope{scopeOf(engManager), scopeOf(other)} {
		_, err := GetObjective(ctx, db, s, personal.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	got, err := GetObjective(ctx, db, scopeOf(other), company.ID)
	require.NoError(t, err)
	assert.Len(t, got.KeyResults, 1)
}

func TestChangeStatus(t *testing.T) {
	pinClock(t)
	db := testutil.NewDB(t)
	sales := testutil.Department(t, db, "Sales")
	manager := testutil.User(t, db, "Mia", models.RoleManager, &sales)
	member := testutil.User(t, db, "Max", models.RoleMember, &sales)
	team := seedObjective(t, db, models.ObjectiveTeam, member.ID, ptr(sales.ID), 1)
	ctx := context.Background()

	_, err := ChangeStatus(ctx, db, scopeOf(member), team.ID, models.StatusApproved)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	updated, err := ChangeStatus(ctx, db, scopeOf(member), team.ID, models.StatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, updated.Status)

	_, err = ChangeStatus(ctx, db, scopeOf(member), team.ID, models.StatusApproved)
	assert.ErrorIs(t, err, lifecycle.ErrForbidden)

	updated, err = ChangeStatus(ctx, db, scopeOf(manager), team.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, models.StatusApproved, reloadObjective(t, db, team.ID).Status)

	_, err = ChangeStatus(ctx, db, scopeOf(manager), uuid.New(), models.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteObjective(t *testing.T) {
	pinClock(t)
	db := testutil.NewDB(t)
	owner := testutil.User(t, db, "Owner", models.RoleMember, nil)
	other := testutil.User(t, db, "Other", models.RoleMember, nil)
	obj := seedObjective(t, db, models.ObjectivePersonal, owner.ID, nil, 1, 2)
	ctx := context.Background()

	assert.ErrorIs(t, DeleteObjective(ctx, db, scopeOf(other), obj.ID), ErrForbidden)
	require.NoError(t, DeleteObjective(ctx, db, scopeOf(owner), obj.ID))
	assert.ErrorIs(t, DeleteObjective(ctx, db, scopeOf(owner), obj.ID), ErrNotFound)

	var krs int64
	require.NoError(t, db.Model(&models.KeyResult{}).Where("objective_id = ?", obj.ID).Count(&krs).Error)
	assert.Zero(t, krs)
}

func TestCheckInsAndBlockers(t *testing.T) {
	pinClock(t)
	db := testutil.NewDB(t)
	owner := testutil.User(t, db, "Owner", models.RoleMember, nil)
	stranger := testutil.User(t, db, "Stranger", models.RoleMember, nil)
	obj := seedObjective(t, db, models.ObjectivePersonal, owner.ID, nil, 1)
	require.NoError(t, db.Model(&models.Objective{}).Where("id = ?", obj.ID).Update("progress", 42).Error)
	ctx := context.Background()

	ci, err := AddCheckIn(ctx, db, scopeOf(owner), obj.ID, models.CreateCheckInRequest{Note: "steady"})
	require.NoError(t, err)
	assert.Equal(t, 42, ci.Progress)
	assert.True(t, ci.CreatedAt.Equal(fixedNow))

	ci, err = AddCheckIn(ctx, db, scopeOf(owner), obj.ID, models.CreateCheckInRequest{Progress: ptr(70)})
	require.NoError(t, err)
	assert.Equal(t, 70, ci.Progress)

	_, err = AddCheckIn(ctx, db, scopeOf(stranger), obj.ID, models.CreateCheckInRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := AddBlocker(ctx, db, scopeOf(owner), obj.ID, models.CreateBlockerRequest{Title: "Waiting on legal"})
	require.NoError(t, err)
	assert.Equal(t, models.BlockerOpen, b.Status)

	_, err = ResolveBlocker(ctx, db, scopeOf(stranger), b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	resolved, err := ResolveBlocker(ctx, db, scopeOf(owner), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BlockerResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = ResolveBlocker(ctx, db, scopeOf(owner), b.ID)
	assert.ErrorIs(t, err, ErrConflict)
}
