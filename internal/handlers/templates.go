package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetTemplates lists the objective template catalog, optionally by ?category=
func GetTemplates(c *fiber.Ctx) error {
	q := database.DB.Order("title ASC")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var templates []models.ObjectiveTemplate
	if err := q.Find(&templates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch templates",
		})
	}
	return c.JSON(templates)
}
