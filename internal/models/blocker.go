package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BlockerOpen     = "OPEN"
	BlockerResolved = "RESOLVED"
)

type Blocker struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ObjectiveID uuid.UUID  `json:"objectiveId" gorm:"type:uuid;index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      string     `json:"status" gorm:"not null;default:'OPEN'"`
	ReportedBy  uuid.UUID  `json:"reportedBy" gorm:"type:uuid;not null"`
	ResolvedAt  *time.Time `json:"resolvedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (b *Blocker) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BlockerOpen
	}
	return nil
}

type CreateBlockerRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}
