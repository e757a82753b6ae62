package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ObjectiveCompany    = "COMPANY"
	ObjectiveDepartment = "DEPARTMENT"
	ObjectiveTeam       = "TEAM"
	ObjectivePersonal   = "PERSONAL"
)

const (
	StatusDraft           = "DRAFT"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
)

const (
	SourceManual = "MANUAL"
	SourceKPI    = "KPI"
	SourceTask   = "TASK"
)

type Objective struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	Type         string         `json:"type" gorm:"not null;index"` // COMPANY, DEPARTMENT, TEAM, PERSONAL
	OwnerID      uuid.UUID      `json:"ownerId" gorm:"type:uuid;index;not null"`
	DepartmentID *uuid.UUID     `json:"departmentId" gorm:"type:uuid;index"`
	WorkgroupID  *uuid.UUID     `json:"workgroupId" gorm:"type:uuid"`
	TemplateID   *uuid.UUID     `json:"templateId" gorm:"type:uuid"`
	ParentID     *uuid.UUID     `json:"parentId" gorm:"type:uuid;index"` // soft link, not an ownership relation
	Quarter      string         `json:"quarter" gorm:"not null"`
	Year         int            `json:"year" gorm:"not null"`
	Status       string         `json:"status" gorm:"not null;default:'DRAFT'"`
	Priority     string         `json:"priority" gorm:"default:'MEDIUM'"`
	Tags         []string       `json:"tags" gorm:"serializer:json"`
	StartDate    time.Time      `json:"startDate"`
	EndDate      time.Time      `json:"endDate"`
	Progress     int            `json:"progress" gorm:"default:0"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	KeyResults   []KeyResult    `json:"keyResults" gorm:"foreignKey:ObjectiveID"`
}

func (o *Objective) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusDraft
	}
	return nil
}

// KeyResult lives and dies with its Objective.
type KeyResult struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ObjectiveID  uuid.UUID `json:"objectiveId" gorm:"type:uuid;index;not null"`
	Position     int       `json:"position" gorm:"not null;default:0"`
	Title        string    `json:"title" gorm:"not null"`
	TargetValue  float64   `json:"targetValue" gorm:"not null"`
	CurrentValue float64   `json:"currentValue" gorm:"default:0"`
	Unit         string    `json:"unit"`
	Weight       int       `json:"weight" gorm:"not null;default:1"`
	Source       string    `json:"source" gorm:"not null;default:'MANUAL'"` // MANUAL, KPI, TASK
	Progress     int       `json:"progress" gorm:"default:0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (kr *KeyResult) BeforeCreate(tx *gorm.DB) error {
	if kr.ID == uuid.Nil {
		kr.ID = uuid.New()
	}
	if kr.Weight <= 0 {
		kr.Weight = 1
	}
	if kr.Source == "" {
		kr.Source = SourceManual
	}
	return nil
}

// Objective DTOs
type KeyResultInput struct {
	Title       string  `json:"title" validate:"required"`
	TargetValue float64 `json:"targetValue" validate:"gt=0"`
	Unit        string  `json:"unit"`
	Weight      int     `json:"weight" validate:"omitempty,min=1,max=10"`
}

type CreateObjectiveRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	Quarter     string           `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4"`
	Year        int              `json:"year" validate:"required,min=2000,max=2100"`
	ParentID    *uuid.UUID       `json:"parentId"`
	Tags        []string         `json:"tags"`
	Priority    string           `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	KeyResults  []KeyResultInput `json:"keyResults" validate:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT PENDING_APPROVAL APPROVED REJECTED"`
}

type UpdateKeyResultRequest struct {
	CurrentValue *float64 `json:"currentValue" validate:"required,gte=0"`
}
