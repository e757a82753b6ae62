package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskDone       = "DONE"
)

type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Status      string         `json:"status" gorm:"not null;default:'TODO'"` // TODO, IN_PROGRESS, DONE
	AssigneeID  *uuid.UUID     `json:"assigneeId" gorm:"type:uuid;index"`
	ObjectiveID *uuid.UUID     `json:"objectiveId" gorm:"type:uuid"`
	KRID        *uuid.UUID     `json:"krId" gorm:"column:kr_id;type:uuid;index"` // soft link
	DueDate     *time.Time     `json:"dueDate"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	return nil
}

// Task DTOs
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	AssigneeID  *uuid.UUID `json:"assigneeId"`
	ObjectiveID *uuid.UUID `json:"objectiveId"`
	KRID        *uuid.UUID `json:"krId"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	AssigneeID  *uuid.UUID `json:"assigneeId"`
	KRID        *uuid.UUID `json:"krId"`
	ClearKR     bool       `json:"clearKr"`
	DueDate     *time.Time `json:"dueDate"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}
