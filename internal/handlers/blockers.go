package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func CreateBlocker(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}
	var req models.CreateBlockerRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	b, err := services.AddBlocker(c.UserContext(), database.DB, middleware.GetScope(c), id, req)
	if err != nil {
		return respondError(c, err, "Failed to report blocker")
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

// GetBlockers lists an objective's blockers, optionally filtered by ?status=
func GetBlockers(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}
	if _, err := services.GetObjective(c.UserContext(), database.DB, middleware.GetScope(c), id); err != nil {
		return respondError(c, err, "Failed to fetch blockers")
	}

	q := database.DB.Where("objective_id = ?", id)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var blockers []models.Blocker
	if err := q.Order("created_at DESC").Find(&blockers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch blockers",
		})
	}
	return c.JSON(blockers)
}

func ResolveBlocker(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "blocker")
	if !ok {
		return err
	}

	b, err := services.ResolveBlocker(c.UserContext(), database.DB, middleware.GetScope(c), id)
	if err != nil {
		return respondError(c, err, "Failed to resolve blocker")
	}
	return c.JSON(b)
}
