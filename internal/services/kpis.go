package services

import (
	"context"
	"errors"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/progress"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateKPI stores a KPI. Personal KPIs can only be assigned by managers or
// admins. A linked key result is recalculated immediately.
func CreateKPI(ctx context.Context, db *gorm.DB, scope Scope, req models.CreateKPIRequest) (*models.KPI, error) {
	if req.Scope == models.ScopePersonal && !scope.IsAdmin() && !scope.IsManager() {
		return nil, forbiddenf("Only managers and admins can assign personal KPIs")
	}
	if req.Scope == models.ScopePersonal && req.AssigneeID == nil {
		return nil, validationf("Personal KPIs need an assignee")
	}
	if req.LinkedKRID != nil && req.LinkedOKRID == nil {
		return nil, validationf("linkedKRId requires linkedOKRId")
	}

	kpi := models.KPI{
		Title:        req.Title,
		Description:  req.Description,
		Scope:        req.Scope,
		DepartmentID: req.DepartmentID,
		WorkgroupID:  req.WorkgroupID,
		AssigneeID:   req.AssigneeID,
		TargetValue:  req.TargetValue,
		Unit:         req.Unit,
		Weight:       req.Weight,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		LinkedOKRID:  req.LinkedOKRID,
		LinkedKRID:   req.LinkedKRID,
	}
	kpi.Progress = 0
	kpi.Status = progress.KPIStatus(0, kpi.EndDate, Now())

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authorizeLink(tx, scope, kpi.LinkedOKRID, kpi.LinkedKRID); err != nil {
			return err
		}
		if err := tx.Create(&kpi).Error; err != nil {
			return err
		}
		return propagateKPI(tx, &kpi)
	})
	if err != nil {
		return nil, err
	}
	return &kpi, nil
}

// UpdateKPIProgress records a new measurement, derives progress and status,
// and propagates to the linked key result as the weighted mean of all KPIs
// sharing it. The KPI write and the propagation commit together.
func UpdateKPIProgress(ctx context.Context, db *gorm.DB, scope Scope, kpiID uuid.UUID, current float64) (*models.KPI, error) {
	var kpi models.KPI
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&kpi, "id = ?", kpiID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("KPI")
			}
			return err
		}
		if err := authorizeKPI(tx, scope, &kpi); err != nil {
			return err
		}

		kpi.CurrentValue = current
		kpi.Progress = progress.Ratio(current, kpi.TargetValue)
		kpi.Status = progress.KPIStatus(kpi.Progress, kpi.EndDate, Now())

		if err := tx.Model(&models.KPI{}).Where("id = ?", kpi.ID).Updates(map[string]interface{}{
			"current_value": kpi.CurrentValue,
			"progress":      kpi.Progress,
			"status":        kpi.Status,
		}).Error; err != nil {
			return err
		}
		return propagateKPI(tx, &kpi)
	})
	if err != nil {
		return nil, err
	}
	return &kpi, nil
}

// authorizeKPI admits the assignee and the manager of the KPI's department.
// Everyone else needs write access to the linked objective, and an unlinked
// KPI with neither is admin-only.
func authorizeKPI(tx *gorm.DB, scope Scope, kpi *models.KPI) error {
	switch {
	case scope.IsAdmin():
		return nil
	case kpi.AssigneeID != nil && *kpi.AssigneeID == scope.UserID:
		return nil
	case scope.managesDepartment(kpi.DepartmentID):
		return nil
	case kpi.LinkedOKRID == nil && kpi.LinkedKRID == nil:
		return forbiddenf("You cannot update this KPI")
	}
	return authorizeLink(tx, scope, kpi.LinkedOKRID, kpi.LinkedKRID)
}

func propagateKPI(tx *gorm.DB, kpi *models.KPI) error {
	switch {
	case kpi.LinkedKRID != nil:
		_, err := recalcFromKPIs(tx, *kpi.LinkedKRID)
		return err
	case kpi.LinkedOKRID != nil:
		_, err := refreshObjective(tx, *kpi.LinkedOKRID)
		return err
	}
	return nil
}

// GetKPI looks up a KPI by id.
func GetKPI(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.KPI, error) {
	var kpi models.KPI
	if err := db.WithContext(ctx).First(&kpi, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("KPI")
		}
		return nil, err
	}
	return &kpi, nil
}
