package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func CreateKPI(c *fiber.Ctx) error {
	var req models.CreateKPIRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	kpi, err := services.CreateKPI(c.UserContext(), database.DB, middleware.GetScope(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create KPI")
	}
	return c.Status(fiber.StatusCreated).JSON(kpi)
}

func GetKPI(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "KPI")
	if !ok {
		return err
	}

	kpi, err := services.GetKPI(c.UserContext(), database.DB, id)
	if err != nil {
		return respondError(c, err, "Failed to fetch KPI")
	}
	return c.JSON(kpi)
}

// UpdateKPIProgress records a measurement and recalculates the linked key result.
func UpdateKPIProgress(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "KPI")
	if !ok {
		return err
	}
	var req models.UpdateKPIProgressRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	kpi, err := services.UpdateKPIProgress(c.UserContext(), database.DB, middleware.GetScope(c), id, *req.CurrentValue)
	if err != nil {
		return respondError(c, err, "Failed to update KPI")
	}
	return c.JSON(kpi)
}
