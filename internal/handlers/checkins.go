package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func CreateCheckIn(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}
	var req models.CreateCheckInRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	ci, err := services.AddCheckIn(c.UserContext(), database.DB, middleware.GetScope(c), id, req)
	if err != nil {
		return respondError(c, err, "Failed to record check-in")
	}
	return c.Status(fiber.StatusCreated).JSON(ci)
}

// GetCheckIns returns an objective's check-in history, newest first
func GetCheckIns(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}
	if _, err := services.GetObjective(c.UserContext(), database.DB, middleware.GetScope(c), id); err != nil {
		return respondError(c, err, "Failed to fetch check-ins")
	}
	page, limit, offset := pagination(c)

	var checkIns []models.CheckIn
	if err := database.DB.Where("objective_id = ?", id).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&checkIns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch check-ins",
		})
	}

	var total int64
	if err := database.DB.Model(&models.CheckIn{}).Where("objective_id = ?", id).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count check-ins",
		})
	}

	return c.JSON(fiber.Map{
		"checkIns": checkIns,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}
