package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func GetHealthScore(c *fiber.Ctx) error {
	filter, err := periodFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := services.HealthScore(c.UserContext(), database.DB, middleware.GetScope(c), filter)
	if err != nil {
		return respondError(c, err, "Failed to compute health score")
	}
	return c.JSON(report)
}

func GetAtRisk(c *fiber.Ctx) error {
	filter, err := periodFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	risks, err := services.AtRisk(c.UserContext(), database.DB, middleware.GetScope(c), filter)
	if err != nil {
		return respondError(c, err, "Failed to compute at-risk objectives")
	}
	return c.JSON(fiber.Map{
		"objectives": risks,
		"total":      len(risks),
	})
}

func GetProgressComparison(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "objective")
	if !ok {
		return err
	}

	series, err := services.ProgressComparison(c.UserContext(), database.DB, middleware.GetScope(c), id)
	if err != nil {
		return respondError(c, err, "Failed to compute progress comparison")
	}
	return c.JSON(series)
}

func GetDepartmentStats(c *fiber.Ctx) error {
	filter, err := periodFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	stats, err := services.DepartmentStats(c.UserContext(), database.DB, middleware.GetScope(c), filter)
	if err != nil {
		return respondError(c, err, "Failed to compute department stats")
	}
	return c.JSON(stats)
}
