package handlers

import (
	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetMe returns the caller's profile alongside the role and department
// carried by the token.
func GetMe(c *fiber.Ctx) error {
	scope := middleware.GetScope(c)

	var user models.User
	if err := database.DB.First(&user, "id = ?", scope.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var department *models.Department
	if user.DepartmentID != nil {
		var d models.Department
		if err := database.DB.First(&d, "id = ?", *user.DepartmentID).Error; err == nil {
			department = &d
		}
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       scope.Role,
		"department": department,
		"createdAt":  user.CreatedAt,
	})
}
