package services

import (
	"context"
	"errors"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTask stores a task and, when it targets a key result, recalculates it.
func CreateTask(ctx context.Context, db *gorm.DB, scope Scope, req models.CreateTaskRequest) (*models.Task, error) {
	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		ObjectiveID: req.ObjectiveID,
		KRID:        req.KRID,
		DueDate:     req.DueDate,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := authorizeLink(tx, scope, task.ObjectiveID, task.KRID); err != nil {
			return err
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return recalcTaskLinks(tx, task.KRID)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update. When the task moves between key
// results both the old and the new one are recalculated.
func UpdateTask(ctx context.Context, db *gorm.DB, scope Scope, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	var task models.Task
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadTask(tx, id, &task); err != nil {
			return err
		}
		if err := authorizeTask(tx, scope, &task); err != nil {
			return err
		}
		previous := task.KRID

		if req.Title != nil {
			if *req.Title == "" {
				return validationf("Title cannot be empty")
			}
			task.Title = *req.Title
		}
		if req.Description != nil {
			task.Description = *req.Description
		}
		if req.Status != nil {
			task.Status = *req.Status
		}
		if req.AssigneeID != nil {
			task.AssigneeID = req.AssigneeID
		}
		if req.DueDate != nil {
			task.DueDate = req.DueDate
		}
		if req.ClearKR {
			task.KRID = nil
		} else if req.KRID != nil {
			if err := authorizeLink(tx, scope, nil, req.KRID); err != nil {
				return err
			}
			task.KRID = req.KRID
		}

		if err := tx.Save(&task).Error; err != nil {
			return err
		}
		return recalcTaskLinks(tx, previous, task.KRID)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus changes only the status.
func UpdateTaskStatus(ctx context.Context, db *gorm.DB, scope Scope, id uuid.UUID, status string) (*models.Task, error) {
	var task models.Task
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadTask(tx, id, &task); err != nil {
			return err
		}
		if err := authorizeTask(tx, scope, &task); err != nil {
			return err
		}
		task.Status = status
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Update("status", status).Error; err != nil {
			return err
		}
		return recalcTaskLinks(tx, task.KRID)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task. A key result left without tasks keeps its
// last progress value.
func DeleteTask(ctx context.Context, db *gorm.DB, scope Scope, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := loadTask(tx, id, &task); err != nil {
			return err
		}
		if err := authorizeTask(tx, scope, &task); err != nil {
			return err
		}
		if err := tx.Delete(&task).Error; err != nil {
			return err
		}
		return recalcTaskLinks(tx, task.KRID)
	})
}

func loadTask(tx *gorm.DB, id uuid.UUID, task *models.Task) error {
	if err := tx.First(task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Task")
		}
		return err
	}
	return nil
}

// authorizeTask lets the assignee work their own task; anyone else needs
// write access to the objective it feeds.
func authorizeTask(tx *gorm.DB, scope Scope, task *models.Task) error {
	if task.AssigneeID != nil && *task.AssigneeID == scope.UserID {
		return nil
	}
	return authorizeLink(tx, scope, task.ObjectiveID, task.KRID)
}

func recalcTaskLinks(tx *gorm.DB, krIDs ...*uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(krIDs))
	for _, id := range krIDs {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		if _, err := recalcFromTasks(tx, *id); err != nil {
			return err
		}
	}
	return nil
}
