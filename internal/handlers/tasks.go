package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

func CreateTask(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := services.CreateTask(c.UserContext(), database.DB, middleware.GetScope(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask serves both PUT and PATCH; absent fields are left unchanged.
func UpdateTask(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "task")
	if !ok {
		return err
	}
	var req models.UpdateTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := services.UpdateTask(c.UserContext(), database.DB, middleware.GetScope(c), id, req)
	if err != nil {
		return respondError(c, err, "Failed to update task")
	}
	return c.JSON(task)
}

func UpdateTaskStatus(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "task")
	if !ok {
		return err
	}
	var req models.UpdateTaskStatusRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := services.UpdateTaskStatus(c.UserContext(), database.DB, middleware.GetScope(c), id, req.Status)
	if err != nil {
		return respondError(c, err, "Failed to update task")
	}
	return c.JSON(task)
}

func DeleteTask(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "id", "task")
	if !ok {
		return err
	}

	if err := services.DeleteTask(c.UserContext(), database.DB, middleware.GetScope(c), id); err != nil {
		return respondError(c, err, "Failed to delete task")
	}
	return c.JSON(fiber.Map{"success": true})
}
