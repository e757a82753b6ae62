package services

import (
	"context"
	"errors"
	"log"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/progress"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leaf recalculation keeps key result and objective progress derived from
// tasks and KPIs. The key result write and the objective write share one
// transaction. Analytics entries are left to expire on their TTL.

// RecalculateFromTasks recomputes a key result from the tasks linked to it
// and refreshes its objective. A missing key result is not an error.
func RecalculateFromTasks(ctx context.Context, db *gorm.DB, krID uuid.UUID) (*models.Objective, error) {
	var obj *models.Objective
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		obj, err = recalcFromTasks(tx, krID)
		return err
	})
	return obj, err
}

// RecalculateFromKPIs recomputes a key result as the weighted mean of every
// KPI linked to it and refreshes its objective.
func RecalculateFromKPIs(ctx context.Context, db *gorm.DB, krID uuid.UUID) (*models.Objective, error) {
	var obj *models.Objective
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		obj, err = recalcFromKPIs(tx, krID)
		return err
	})
	return obj, err
}

// RefreshObjective recomputes an objective's aggregate progress.
func RefreshObjective(ctx context.Context, db *gorm.DB, objectiveID uuid.UUID) (*models.Objective, error) {
	var obj *models.Objective
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		obj, err = refreshObjective(tx, objectiveID)
		return err
	})
	return obj, err
}

func recalcFromTasks(tx *gorm.DB, krID uuid.UUID) (*models.Objective, error) {
	kr, found, err := findKeyResult(tx, krID)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("recalc: key result %s no longer exists, skipping task recalculation", krID)
		recalculations.WithLabelValues("task", "missing").Inc()
		return nil, nil
	}

	var total, done int64
	if err := tx.Model(&models.Task{}).Where("kr_id = ?", krID).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Task{}).Where("kr_id = ? AND status = ?", krID, models.TaskDone).Count(&done).Error; err != nil {
		return nil, err
	}

	p, ok := progress.FromTasks(int(done), int(total))
	if !ok {
		// No tasks left: keep the last known value rather than resetting it.
		recalculations.WithLabelValues("task", "unchanged").Inc()
		return nil, nil
	}

	recalculations.WithLabelValues("task", "updated").Inc()
	return applyKeyResultProgress(tx, kr, p, models.SourceTask)
}

func recalcFromKPIs(tx *gorm.DB, krID uuid.UUID) (*models.Objective, error) {
	kr, found, err := findKeyResult(tx, krID)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("recalc: key result %s no longer exists, skipping KPI recalculation", krID)
		recalculations.WithLabelValues("kpi", "missing").Inc()
		return nil, nil
	}

	var kpis []models.KPI
	if err := tx.Where("linked_kr_id = ?", krID).Find(&kpis).Error; err != nil {
		return nil, err
	}
	samples := make([]progress.Weighted, len(kpis))
	for i, k := range kpis {
		samples[i] = progress.Weighted{Progress: k.Progress, Weight: k.Weight}
	}

	p, ok := progress.WeightedMean(samples)
	if !ok {
		recalculations.WithLabelValues("kpi", "unchanged").Inc()
		return nil, nil
	}

	recalculations.WithLabelValues("kpi", "updated").Inc()
	return applyKeyResultProgress(tx, kr, p, models.SourceKPI)
}

func applyKeyResultProgress(tx *gorm.DB, kr *models.KeyResult, p int, source string) (*models.Objective, error) {
	kr.Progress = p
	kr.CurrentValue = progress.CurrentValue(p, kr.TargetValue)
	kr.Source = source

	if err := tx.Model(&models.KeyResult{}).Where("id = ?", kr.ID).Updates(map[string]interface{}{
		"progress":      kr.Progress,
		"current_value": kr.CurrentValue,
		"source":        kr.Source,
	}).Error; err != nil {
		return nil, err
	}
	return refreshObjective(tx, kr.ObjectiveID)
}

// refreshObjective sets progress to the mean of its key results. An
// objective without key results falls back to the mean of KPIs linked to it.
func refreshObjective(tx *gorm.DB, objectiveID uuid.UUID) (*models.Objective, error) {
	var obj models.Objective
	err := tx.Preload("KeyResults", orderedKeyResults).First(&obj, "id = ?", objectiveID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("recalc: objective %s no longer exists, skipping aggregate", objectiveID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(obj.KeyResults) > 0 {
		values := make([]int, len(obj.KeyResults))
		for i, kr := range obj.KeyResults {
			values[i] = kr.Progress
		}
		obj.Progress = progress.Mean(values)
	} else {
		var linked []int
		if err := tx.Model(&models.KPI{}).Where("linked_okr_id = ?", objectiveID).Pluck("progress", &linked).Error; err != nil {
			return nil, err
		}
		obj.Progress = progress.Mean(linked)
	}

	if err := tx.Model(&models.Objective{}).Where("id = ?", objectiveID).Update("progress", obj.Progress).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

// findKeyResult resolves a soft link. found is false when no objective holds
// the key result any more.
func findKeyResult(tx *gorm.DB, krID uuid.UUID) (*models.KeyResult, bool, error) {
	var kr models.KeyResult
	err := tx.First(&kr, "id = ?", krID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &kr, true, nil
}

func orderedKeyResults(db *gorm.DB) *gorm.DB {
	return db.Order("key_results.position ASC")
}

// UpdateKeyResultValue records a manual measurement on a key result and
// refreshes the objective aggregate.
func UpdateKeyResultValue(ctx context.Context, db *gorm.DB, scope Scope, objectiveID, krID uuid.UUID, current float64) (*models.Objective, error) {
	var obj *models.Objective
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.Objective
		if err := tx.First(&owner, "id = ?", objectiveID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Objective")
			}
			return err
		}
		if !scope.CanView(&owner) {
			return notFound("Objective")
		}
		if !scope.CanEdit(&owner) {
			return forbiddenf("You cannot update key results on this objective")
		}

		var kr models.KeyResult
		if err := tx.First(&kr, "id = ? AND objective_id = ?", krID, objectiveID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Key result")
			}
			return err
		}

		kr.CurrentValue = current
		kr.Progress = progress.Ratio(current, kr.TargetValue)
		if err := tx.Model(&models.KeyResult{}).Where("id = ?", kr.ID).Updates(map[string]interface{}{
			"current_value": kr.CurrentValue,
			"progress":      kr.Progress,
			"source":        models.SourceManual,
		}).Error; err != nil {
			return err
		}
		recalculations.WithLabelValues("manual", "updated").Inc()

		var err error
		obj, err = refreshObjective(tx, objectiveID)
		return err
	})
	return obj, err
}
