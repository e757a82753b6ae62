package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuarterBounds returns the first and last instant of a calendar quarter in UTC.
func QuarterBounds(quarter string, year int) (time.Time, time.Time, error) {
	var month time.Month
	switch quarter {
	case "Q1":
		month = time.January
	case "Q2":
		month = time.April
	case "Q3":
		month = time.July
	case "Q4":
		month = time.October
	default:
		return time.Time{}, time.Time{}, validationf("Invalid quarter %q, expected Q1-Q4", quarter)
	}
	if year < 2000 || year > 2100 {
		return time.Time{}, time.Time{}, validationf("Invalid year %d", year)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).Add(-time.Millisecond)
	return start, end, nil
}

// GenerateRoot materializes one COMPANY objective per selected template.
// All objectives are created in a single transaction.
func GenerateRoot(ctx context.Context, db *gorm.DB, req models.GenerateRequest, ownerID uuid.UUID) ([]models.Objective, error) {
	if len(req.TemplateIDs) == 0 {
		return nil, validationf("At least one template is required")
	}
	start, end, err := QuarterBounds(req.Quarter, req.Year)
	if err != nil {
		return nil, err
	}

	var templates []models.ObjectiveTemplate
	if err := db.WithContext(ctx).Where("id IN ?", req.TemplateIDs).Find(&templates).Error; err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, validationf("No matching templates found")
	}
	byID := make(map[uuid.UUID]models.ObjectiveTemplate, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	roots := make([]models.Objective, 0, len(templates))
	for _, id := range req.TemplateIDs {
		tpl, ok := byID[id]
		if !ok {
			continue
		}
		obj, err := objectiveFromTemplate(tpl, req.Overrides[id], req.Quarter, req.Year, start, end, ownerID)
		if err != nil {
			return nil, err
		}
		roots = append(roots, obj)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range roots {
			if err := tx.Create(&roots[i]).Error; err != nil {
				return fmt.Errorf("create company objective %q: %w", roots[i].Title, err)
			}
		}
		return nil
	})
	if err != nil {
		cascadeFailures.WithLabelValues(models.ObjectiveCompany).Inc()
		return nil, err
	}

	cascadedObjectives.WithLabelValues(models.ObjectiveCompany).Add(float64(len(roots)))
	log.Printf("cascade: generated %d company objectives for %s %d", len(roots), req.Quarter, req.Year)
	invalidateAnalytics("root generation")
	return roots, nil
}

func objectiveFromTemplate(tpl models.ObjectiveTemplate, override models.TemplateOverride, quarter string, year int, start, end time.Time, ownerID uuid.UUID) (models.Objective, error) {
	if len(tpl.KeyResults) == 0 {
		return models.Objective{}, validationf("Template %q has no key results", tpl.Title)
	}

	title := tpl.Title
	if override.Title != "" {
		title = override.Title
	}
	description := tpl.Description
	if override.Description != "" {
		description = override.Description
	}
	if title == "" {
		return models.Objective{}, validationf("Objective title is required")
	}

	templateID := tpl.ID
	obj := models.Objective{
		Title:       title,
		Description: description,
		Type:        models.ObjectiveCompany,
		OwnerID:     ownerID,
		TemplateID:  &templateID,
		Quarter:     quarter,
		Year:        year,
		Status:      models.StatusDraft,
		Priority:    tpl.Priority,
		Tags:        append([]string(nil), tpl.Tags...),
		StartDate:   start,
		EndDate:     end,
	}

	for i, krt := range tpl.KeyResults {
		if krt.Title == "" || krt.TargetValue <= 0 {
			return models.Objective{}, validationf("Template %q has an invalid key result at position %d", tpl.Title, i)
		}
		obj.KeyResults = append(obj.KeyResults, models.KeyResult{
			Position:    i,
			Title:       krt.Title,
			TargetValue: krt.TargetValue,
			Unit:        krt.Unit,
			Weight:      clampWeight(krt.Weight),
			Source:      models.SourceManual,
		})
	}
	return obj, nil
}

// CascadeToDepartments creates one DEPARTMENT objective per department that
// has a manager, aligned 1:1 with the company objective's key results.
// Departments without a manager, or already holding a child of this root,
// are skipped. Either every objective of the call commits or none does.
func CascadeToDepartments(ctx context.Context, db *gorm.DB, rootID uuid.UUID) ([]models.Objective, error) {
	root, err := loadObjective(db.WithContext(ctx), rootID, "Company objective")
	if err != nil {
		return nil, err
	}
	if root.Type != models.ObjectiveCompany {
		return nil, validationf("Objective %s is %s, expected COMPANY", rootID, root.Type)
	}

	created := []models.Objective{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var departments []models.Department
		if err := tx.Order("name ASC").Find(&departments).Error; err != nil {
			return err
		}

		existing, err := existingChildren(tx, root.ID, "department_id")
		if err != nil {
			return err
		}

		for _, dept := range departments {
			if existing[dept.ID] {
				continue
			}

			var manager models.User
			err := tx.Where("department_id = ? AND role = ?", dept.ID, models.RoleManager).
				Order("created_at ASC").
				First(&manager).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("cascade: department %s has no manager, skipping", dept.Name)
				continue
			}
			if err != nil {
				return err
			}

			deptID := dept.ID
			child := childObjective(root, models.ObjectiveDepartment, manager.ID, &deptID, nil)
			if err := tx.Create(&child).Error; err != nil {
				return fmt.Errorf("create objective for department %s: %w", dept.Name, err)
			}
			if err := notifyAssigned(tx, &child, dept.Name); err != nil {
				return err
			}
			created = append(created, child)
		}
		return nil
	})
	if err != nil {
		cascadeFailures.WithLabelValues(models.ObjectiveDepartment).Inc()
		log.Printf("cascade: department fan-out for %s rolled back: %v", rootID, err)
		return nil, err
	}

	cascadedObjectives.WithLabelValues(models.ObjectiveDepartment).Add(float64(len(created)))
	log.Printf("cascade: %d department objectives created from %s", len(created), rootID)
	invalidateAnalytics("department cascade")
	return created, nil
}

// CascadeToTeams creates one TEAM objective per workgroup led by a member of
// the department objective's department. Transactional per call.
func CascadeToTeams(ctx context.Context, db *gorm.DB, deptOkrID uuid.UUID) ([]models.Objective, error) {
	parent, err := loadObjective(db.WithContext(ctx), deptOkrID, "Department objective")
	if err != nil {
		return nil, err
	}
	if parent.Type != models.ObjectiveDepartment {
		return nil, validationf("Objective %s is %s, expected DEPARTMENT", deptOkrID, parent.Type)
	}
	if parent.DepartmentID == nil {
		return nil, validationf("Department objective %s has no department", deptOkrID)
	}

	created := []models.Objective{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var memberIDs []uuid.UUID
		if err := tx.Model(&models.User{}).Where("department_id = ?", *parent.DepartmentID).Pluck("id", &memberIDs).Error; err != nil {
			return err
		}
		if len(memberIDs) == 0 {
			return nil
		}

		var workgroups []models.Workgroup
		if err := tx.Where("leader_id IN ?", memberIDs).Order("name ASC").Find(&workgroups).Error; err != nil {
			return err
		}

		existing, err := existingChildren(tx, parent.ID, "workgroup_id")
		if err != nil {
			return err
		}

		for _, wg := range workgroups {
			if existing[wg.ID] {
				continue
			}
			wgID := wg.ID
			child := childObjective(parent, models.ObjectiveTeam, wg.LeaderID, parent.DepartmentID, &wgID)
			if err := tx.Create(&child).Error; err != nil {
				return fmt.Errorf("create objective for workgroup %s: %w", wg.Name, err)
			}
			if err := notifyAssigned(tx, &child, wg.Name); err != nil {
				return err
			}
			created = append(created, child)
		}
		return nil
	})
	if err != nil {
		cascadeFailures.WithLabelValues(models.ObjectiveTeam).Inc()
		log.Printf("cascade: team fan-out for %s rolled back: %v", deptOkrID, err)
		return nil, err
	}

	cascadedObjectives.WithLabelValues(models.ObjectiveTeam).Add(float64(len(created)))
	log.Printf("cascade: %d team objectives created from %s", len(created), deptOkrID)
	invalidateAnalytics("team cascade")
	return created, nil
}

// RunWorkflow generates root objectives and optionally cascades them down.
// Each level commits on its own; a failure part-way leaves earlier levels in place.
func RunWorkflow(ctx context.Context, db *gorm.DB, req models.WorkflowRequest, ownerID uuid.UUID) (models.WorkflowSummary, error) {
	var summary models.WorkflowSummary
	if req.CascadeToTeam && !req.CascadeToDept {
		return summary, validationf("cascadeToTeam requires cascadeToDept")
	}

	roots, err := GenerateRoot(ctx, db, req.GenerateRequest, ownerID)
	if err != nil {
		return summary, err
	}
	summary.CompanyObjectives = len(roots)

	if !req.CascadeToDept {
		return summary, nil
	}
	for _, root := range roots {
		depts, err := CascadeToDepartments(ctx, db, root.ID)
		if err != nil {
			return summary, err
		}
		summary.DepartmentObjectives += len(depts)

		if !req.CascadeToTeam {
			continue
		}
		for _, dept := range depts {
			teams, err := CascadeToTeams(ctx, db, dept.ID)
			if err != nil {
				return summary, err
			}
			summary.TeamObjectives += len(teams)
		}
	}
	return summary, nil
}

// Cleanup hard-deletes every objective, key result, KPI, task, check-in and
// blocker, then empties the cache.
func Cleanup(ctx context.Context, db *gorm.DB) (models.CleanupSummary, error) {
	var summary models.CleanupSummary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model interface{}
			count *int64
		}{
			{&models.KeyResult{}, &summary.KeyResults},
			{&models.CheckIn{}, &summary.CheckIns},
			{&models.Blocker{}, &summary.Blockers},
			{&models.Task{}, &summary.Tasks},
			{&models.KPI{}, &summary.KPIs},
			{&models.Objective{}, &summary.Objectives},
		}
		for _, step := range steps {
			res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(step.model)
			if res.Error != nil {
				return res.Error
			}
			*step.count = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	if Cache != nil {
		Cache.Purge()
	}
	log.Printf("cleanup: removed %d objectives, %d KPIs, %d tasks", summary.Objectives, summary.KPIs, summary.Tasks)
	return summary, nil
}

func childObjective(parent *models.Objective, level string, ownerID uuid.UUID, deptID, wgID *uuid.UUID) models.Objective {
	parentID := parent.ID
	child := models.Objective{
		Title:        parent.Title,
		Description:  parent.Description,
		Type:         level,
		OwnerID:      ownerID,
		DepartmentID: deptID,
		WorkgroupID:  wgID,
		TemplateID:   parent.TemplateID,
		ParentID:     &parentID,
		Quarter:      parent.Quarter,
		Year:         parent.Year,
		Status:       models.StatusDraft,
		Priority:     parent.Priority,
		Tags:         append([]string(nil), parent.Tags...),
		StartDate:    parent.StartDate,
		EndDate:      parent.EndDate,
	}
	for _, kr := range parent.KeyResults {
		child.KeyResults = append(child.KeyResults, models.KeyResult{
			Position:    kr.Position,
			Title:       kr.Title,
			TargetValue: kr.TargetValue,
			Unit:        kr.Unit,
			Weight:      kr.Weight,
			Source:      models.SourceManual,
		})
	}
	return child
}

func notifyAssigned(tx *gorm.DB, child *models.Objective, unit string) error {
	return CreateNotification(tx, child.OwnerID, models.NotificationObjectiveAssigned,
		"New objective assigned",
		"\""+child.Title+"\" was cascaded to "+unit,
		map[string]interface{}{"objectiveId": child.ID.String(), "parentId": child.ParentID.String()},
	)
}

// existingChildren returns the values of column on objectives already
// cascaded from parentID.
func existingChildren(tx *gorm.DB, parentID uuid.UUID, column string) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := tx.Model(&models.Objective{}).
		Where("parent_id = ? AND "+column+" IS NOT NULL", parentID).
		Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func loadObjective(db *gorm.DB, id uuid.UUID, what string) (*models.Objective, error) {
	var obj models.Objective
	err := db.Preload("KeyResults", orderedKeyResults).First(&obj, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(what)
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func clampWeight(w int) int {
	if w < 1 {
		return 1
	}
	if w > 10 {
		return 10
	}
	return w
}
