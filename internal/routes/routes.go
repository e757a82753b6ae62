package routes

import (
	"github.com/arnold/okrs-api/internal/handlers"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	protected := api.Group("/", middleware.Protected())

	protected.Get("/me", handlers.GetMe)

	// Cascade automation
	automation := protected.Group("/automation")
	automation.Post("/generate", middleware.RequireRole(models.RoleAdmin), handlers.GenerateObjectives)
	automation.Post("/workflow", middleware.RequireRole(models.RoleAdmin), handlers.RunWorkflow)
	automation.Post("/cleanup", middleware.RequireRole(models.RoleAdmin), handlers.Cleanup)
	automation.Post("/cascade/departments/:companyOkrId", middleware.RequireRole(models.RoleAdmin, models.RoleManager), handlers.CascadeDepartments)
	automation.Post("/cascade/teams/:deptOkrId", middleware.RequireRole(models.RoleAdmin, models.RoleManager), handlers.CascadeTeams)

	objectives := protected.Group("/objectives")
	objectives.Get("/", handlers.GetObjectives)
	objectives.Post("/", handlers.CreateObjective)
	objectives.Get("/:id", handlers.GetObjective)
	objectives.Delete("/:id", handlers.DeleteObjective)
	objectives.Patch("/:id/status", handlers.UpdateObjectiveStatus)
	objectives.Patch("/:id/key-results/:krId", handlers.UpdateKeyResult)

	// Check-ins & blockers
	objectives.Post("/:id/checkins", handlers.CreateCheckIn)
	objectives.Get("/:id/checkins", handlers.GetCheckIns)
	objectives.Post("/:id/blockers", handlers.CreateBlocker)
	objectives.Get("/:id/blockers", handlers.GetBlockers)
	protected.Patch("/blockers/:id/resolve", handlers.ResolveBlocker)

	kpis := protected.Group("/kpis")
	kpis.Post("/", handlers.CreateKPI)
	kpis.Get("/:id", handlers.GetKPI)
	kpis.Patch("/:id/progress", handlers.UpdateKPIProgress)

	tasks := protected.Group("/tasks")
	tasks.Post("/", handlers.CreateTask)
	tasks.Put("/:id", handlers.UpdateTask)
	tasks.Patch("/:id", handlers.UpdateTask)
	tasks.Patch("/:id/status", handlers.UpdateTaskStatus)
	tasks.Delete("/:id", handlers.DeleteTask)

	analytics := protected.Group("/analytics")
	analytics.Get("/health-score", handlers.GetHealthScore)
	analytics.Get("/at-risk", handlers.GetAtRisk)
	analytics.Get("/progress-comparison/:id", handlers.GetProgressComparison)
	analytics.Get("/department-stats", handlers.GetDepartmentStats)

	protected.Get("/templates", handlers.GetTemplates)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", handlers.GetNotifications)
	notifications.Put("/:id/read", handlers.MarkNotificationRead)
	notifications.Post("/read-all", handlers.MarkAllRead)
}
