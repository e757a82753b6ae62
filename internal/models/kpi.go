package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KPIActive    = "ACTIVE"
	KPICompleted = "COMPLETED"
	KPIOverdue   = "OVERDUE"
)

const (
	ScopeDepartment = "DEPARTMENT"
	ScopeWorkgroup  = "WORKGROUP"
	ScopePersonal   = "PERSONAL"
)

type KPI struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	Scope        string         `json:"scope" gorm:"not null;default:'DEPARTMENT'"` // DEPARTMENT, WORKGROUP, PERSONAL
	DepartmentID *uuid.UUID     `json:"departmentId" gorm:"type:uuid;index"`
	WorkgroupID  *uuid.UUID     `json:"workgroupId" gorm:"type:uuid"`
	AssigneeID   *uuid.UUID     `json:"assigneeId" gorm:"type:uuid"`
	TargetValue  float64        `json:"targetValue" gorm:"not null"`
	CurrentValue float64        `json:"currentValue" gorm:"default:0"`
	Unit         string         `json:"unit"`
	Weight       int            `json:"weight" gorm:"not null;default:1"`
	Progress     int            `json:"progress" gorm:"default:0"`
	Status       string         `json:"status" gorm:"not null;default:'ACTIVE'"`
	StartDate    time.Time      `json:"startDate"`
	EndDate      time.Time      `json:"endDate"`
	LinkedOKRID  *uuid.UUID     `json:"linkedOKRId" gorm:"column:linked_okr_id;type:uuid;index"`
	LinkedKRID   *uuid.UUID     `json:"linkedKRId" gorm:"column:linked_kr_id;type:uuid;index"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (k *KPI) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	if k.Weight <= 0 {
		k.Weight = 1
	}
	return nil
}

// KPI DTOs
type CreateKPIRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	Scope        string     `json:"scope" validate:"required,oneof=DEPARTMENT WORKGROUP PERSONAL"`
	DepartmentID *uuid.UUID `json:"departmentId"`
	WorkgroupID  *uuid.UUID `json:"workgroupId"`
	AssigneeID   *uuid.UUID `json:"assigneeId"`
	TargetValue  float64    `json:"targetValue" validate:"gt=0"`
	Unit         string     `json:"unit"`
	Weight       int        `json:"weight" validate:"omitempty,min=1,max=10"`
	StartDate    time.Time  `json:"startDate" validate:"required"`
	EndDate      time.Time  `json:"endDate" validate:"required,gtfield=StartDate"`
	LinkedOKRID  *uuid.UUID `json:"linkedOKRId"`
	LinkedKRID   *uuid.UUID `json:"linkedKRId"`
}

type UpdateKPIProgressRequest struct {
	CurrentValue *float64 `json:"currentValue" validate:"required,gte=0"`
}
