package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckIn is an append-only progress snapshot for an objective.
type CheckIn struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ObjectiveID uuid.UUID `json:"objectiveId" gorm:"type:uuid;index;not null"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	Progress    int       `json:"progress" gorm:"not null"`
	Note        string    `json:"note" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

func (ci *CheckIn) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}

type CreateCheckInRequest struct {
	Progress *int   `json:"progress" validate:"omitempty,min=0,max=100"`
	Note     string `json:"note"`
}
