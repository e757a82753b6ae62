package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

// GenerateObjectives creates company objectives from templates for a quarter.
func GenerateObjectives(c *fiber.Ctx) error {
	var req models.GenerateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	roots, err := services.GenerateRoot(c.UserContext(), database.DB, req, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to generate objectives")
	}
	return c.Status(fiber.StatusCreated).JSON(roots)
}

// CascadeDepartments fans a company objective out to every managed department.
func CascadeDepartments(c *fiber.Ctx) error {
	rootID, ok, err := parseID(c, "companyOkrId", "objective")
	if !ok {
		return err
	}

	created, err := services.CascadeToDepartments(c.UserContext(), database.DB, rootID)
	if err != nil {
		return respondError(c, err, "Failed to cascade to departments")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// CascadeTeams fans a department objective out to its workgroups.
func CascadeTeams(c *fiber.Ctx) error {
	deptID, ok, err := parseID(c, "deptOkrId", "objective")
	if !ok {
		return err
	}

	created, err := services.CascadeToTeams(c.UserContext(), database.DB, deptID)
	if err != nil {
		return respondError(c, err, "Failed to cascade to teams")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func RunWorkflow(c *fiber.Ctx) error {
	var req models.WorkflowRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	summary, err := services.RunWorkflow(c.UserContext(), database.DB, req, middleware.GetUserID(c))
	if err != nil {
		return respondError(c, err, "Workflow failed")
	}
	return c.Status(fiber.StatusCreated).JSON(summary)
}

// Cleanup wipes all goal data. Admin only.
func Cleanup(c *fiber.Ctx) error {
	summary, err := services.Cleanup(c.UserContext(), database.DB)
	if err != nil {
		return respondError(c, err, "Cleanup failed")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"deleted": summary,
	})
}
