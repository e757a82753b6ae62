package services

import (
	"encoding/json"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateNotification writes a notification row using tx, so it commits or
// rolls back with the change that caused it.
func CreateNotification(tx *gorm.DB, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) error {
	notif := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			s := string(data)
			notif.Metadata = &s
		}
	}

	return tx.Create(&notif).Error
}
