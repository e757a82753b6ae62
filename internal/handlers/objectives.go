package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/lifecycle"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetObjectives returns paginated objectives visible to the caller.
func GetObjectives(c *fiber.Ctx) error {
	scope := middleware.GetScope(c)
	filter, err := periodFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	page, limit, offset := pagination(c)

	query := func() *gorm.DB {
		q := scope.Apply(filter.Apply(database.DB.Model(&models.Objective{})))
		if t := c.Query("type"); t != "" {
			q = q.Where("objectives.type = ?", t)
		}
		return q
	}

	var objectives []models.Objective
	if err := query().
		Preload("KeyResults", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&objectives).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch objectives",
		})
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count objectives",
		})
	}

	return c.JSON(fiber.Map{
		"objectives": objectives,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

func GetObjective(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}

	obj, err := services.GetObjective(c.UserContext(), database.DB, middleware.GetScope(c), id)
	if err != nil {
		return respondError(c, err, "Failed to fetch objective")
	}
	return c.JSON(fiber.Map{
		"objective":   obj,
		"transitions": lifecycle.Allowed(obj.Type, obj.Status),
	})
}

// CreateObjective creates a personal objective owned by the caller.
func CreateObjective(c *fiber.Ctx) error {
	var req models.CreateObjectiveRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	obj, err := services.CreatePersonalObjective(c.UserContext(), database.DB, middleware.GetScope(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create objective")
	}
	return c.Status(fiber.StatusCreated).JSON(obj)
}

func UpdateObjectiveStatus(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}
	var req models.UpdateStatusRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	obj, err := services.ChangeStatus(c.UserContext(), database.DB, middleware.GetScope(c), id, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update status")
	}
	return c.JSON(obj)
}

// UpdateKeyResult records a manual current value on one key result.
func UpdateKeyResult(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}
	krID, ok, err := parseID(c, "krId", "key result")
	if !ok {
		return err
	}
	var req models.UpdateKeyResultRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	obj, err := services.UpdateKeyResultValue(c.UserContext(), database.DB, middleware.GetScope(c), id, krID, *req.CurrentValue)
	if err != nil {
		return respondError(c, err, "Failed to update key result")
	}
	return c.JSON(obj)
}

func DeleteObjective(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}

	if err := services.DeleteObjective(c.UserContext(), database.DB, middleware.GetScope(c), id); err != nil {
		return respondError(c, err, "Failed to delete objective")
	}
	return c.JSON(fiber.Map{"success": true})
}
