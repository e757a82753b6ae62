package services

import (
	"context"
	"errors"

	"github.com/arnold/okrs-api/internal/lifecycle"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/progress"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePersonalObjective creates a PERSONAL objective owned by the caller.
func CreatePersonalObjective(ctx context.Context, db *gorm.DB, scope Scope, req models.CreateObjectiveRequest) (*models.Objective, error) {
	if len(req.KeyResults) == 0 {
		return nil, validationf("At least one key result is required")
	}
	start, end, err := QuarterBounds(req.Quarter, req.Year)
	if err != nil {
		return nil, err
	}

	obj := models.Objective{
		Title:        req.Title,
		Description:  req.Description,
		Type:         models.ObjectivePersonal,
		OwnerID:      scope.UserID,
		DepartmentID: scope.DepartmentID,
		ParentID:     req.ParentID,
		Quarter:      req.Quarter,
		Year:         req.Year,
		Status:       models.StatusDraft,
		Priority:     req.Priority,
		Tags:         req.Tags,
		StartDate:    start,
		EndDate:      end,
	}
	if obj.Priority == "" {
		obj.Priority = "MEDIUM"
	}
	for i, in := range req.KeyResults {
		obj.KeyResults = append(obj.KeyResults, models.KeyResult{
			Position:    i,
			Title:       in.Title,
			TargetValue: in.TargetValue,
			Unit:        in.Unit,
			Weight:      clampWeight(in.Weight),
			Source:      models.SourceManual,
		})
	}

	if err := db.WithContext(ctx).Create(&obj).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

// GetObjective loads an objective with its ordered key results if the caller may see it.
func GetObjective(ctx context.Context, db *gorm.DB, scope Scope, id uuid.UUID) (*models.Objective, error) {
	obj, err := loadObjective(db.WithContext(ctx), id, "Objective")
	if err != nil {
		return nil, err
	}
	if !scope.CanView(obj) {
		return nil, notFound("Objective")
	}
	return obj, nil
}

// ChangeStatus moves an objective through the approval lifecycle.
func ChangeStatus(ctx context.Context, db *gorm.DB, scope Scope, id uuid.UUID, status string) (*models.Objective, error) {
	var obj *models.Objective
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		obj, err = loadObjective(tx, id, "Objective")
		if err != nil {
			return err
		}
		if !scope.CanView(obj) {
			return notFound("Objective")
		}
		if !scope.CanEdit(obj) {
			return forbiddenf("You cannot change the status of this objective")
		}
		if err := lifecycle.Transition(obj.Type, obj.Status, status, scope.Role); err != nil {
			return err
		}
		obj.Status = status
		return tx.Model(&models.Objective{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// DeleteObjective removes an objective and its key results. KPIs and tasks
// that pointed at them keep their now-dangling links.
func DeleteObjective(ctx context.Context, db *gorm.DB, scope Scope, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var obj models.Objective
		if err := tx.First(&obj, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Objective")
			}
			return err
		}
		if !scope.IsAdmin() && obj.OwnerID != scope.UserID {
			return forbiddenf("Only the owner or an admin can delete this objective")
		}
		if err := tx.Where("objective_id = ?", id).Delete(&models.KeyResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(&obj).Error
	})
}

// AddCheckIn appends a progress snapshot. Without an explicit value the
// objective's current progress is recorded.
func AddCheckIn(ctx context.Context, db *gorm.DB, scope Scope, objectiveID uuid.UUID, req models.CreateCheckInRequest) (*models.CheckIn, error) {
	obj, err := GetObjective(ctx, db, scope, objectiveID)
	if err != nil {
		return nil, err
	}
	p := obj.Progress
	if req.Progress != nil {
		p = progress.Clamp(*req.Progress)
	}
	ci := models.CheckIn{
		ObjectiveID: obj.ID,
		UserID:      scope.UserID,
		Progress:    p,
		Note:        req.Note,
		CreatedAt:   Now(),
	}
	if err := db.WithContext(ctx).Create(&ci).Error; err != nil {
		return nil, err
	}
	return &ci, nil
}

// AddBlocker opens a blocker on an objective.
func AddBlocker(ctx context.Context, db *gorm.DB, scope Scope, objectiveID uuid.UUID, req models.CreateBlockerRequest) (*models.Blocker, error) {
	obj, err := GetObjective(ctx, db, scope, objectiveID)
	if err != nil {
		return nil, err
	}
	b := models.Blocker{
		ObjectiveID: obj.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.BlockerOpen,
		ReportedBy:  scope.UserID,
	}
	if err := db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ResolveBlocker closes an open blocker.
func ResolveBlocker(ctx context.Context, db *gorm.DB, scope Scope, blockerID uuid.UUID) (*models.Blocker, error) {
	var b models.Blocker
	if err := db.WithContext(ctx).First(&b, "id = ?", blockerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Blocker")
		}
		return nil, err
	}
	obj, err := GetObjective(ctx, db, scope, b.ObjectiveID)
	if err != nil {
		return nil, notFound("Blocker")
	}
	if b.ReportedBy != scope.UserID && !scope.CanEdit(obj) {
		return nil, forbiddenf("Only the reporter or an objective editor can resolve this blocker")
	}
	if b.Status == models.BlockerResolved {
		return nil, conflictf("Blocker is already resolved")
	}

	now := Now()
	b.Status = models.BlockerResolved
	b.ResolvedAt = &now
	if err := db.WithContext(ctx).Model(&models.Blocker{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"status":      b.Status,
		"resolved_at": b.ResolvedAt,
	}).Error; err != nil {
		return nil, err
	}
	return &b, nil
}
