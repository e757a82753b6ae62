package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KeyResultTemplate is a suggested key result carried by an ObjectiveTemplate.
type KeyResultTemplate struct {
	Title       string  `json:"title" yaml:"title"`
	TargetValue float64 `json:"targetValue" yaml:"targetValue"`
	Unit        string  `json:"unit" yaml:"unit"`
	Weight      int     `json:"weight" yaml:"weight"`
}

type ObjectiveTemplate struct {
	ID          uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string              `json:"title" gorm:"uniqueIndex;not null"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Priority    string              `json:"priority" gorm:"default:'MEDIUM'"`
	Tags        []string            `json:"tags" gorm:"serializer:json"`
	KeyResults  []KeyResultTemplate `json:"keyResults" gorm:"serializer:json"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func (t *ObjectiveTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Automation DTOs
type TemplateOverride struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GenerateRequest struct {
	Quarter     string                         `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4"`
	Year        int                            `json:"year" validate:"required,min=2000,max=2100"`
	TemplateIDs []uuid.UUID                    `json:"templateIds" validate:"required,min=1"`
	Overrides   map[uuid.UUID]TemplateOverride `json:"overrides"`
}

type WorkflowRequest struct {
	GenerateRequest
	CascadeToDept bool `json:"cascadeToDept"`
	CascadeToTeam bool `json:"cascadeToTeam"`
}

type WorkflowSummary struct {
	CompanyObjectives    int `json:"companyObjectives"`
	DepartmentObjectives int `json:"departmentObjectives"`
	TeamObjectives       int `json:"teamObjectives"`
}

type CleanupSummary struct {
	Objectives int64 `json:"objectives"`
	KeyResults int64 `json:"keyResults"`
	KPIs       int64 `json:"kpis"`
	Tasks      int64 `json:"tasks"`
	CheckIns   int64 `json:"checkIns"`
	Blockers   int64 `json:"blockers"`
}
