package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/middleware"
	"github.com/arnold/okrs-api/internal/routes"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/arnold/okrs-api/internal/templates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

// NewServeCommand starts the HTTP API.
func NewServeCommand(root *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(root)
			if port != "" {
				cfg.Port = port
			}

			if err := connect(cfg); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			log.Println("Database connected and migrated")

			middleware.Secret = cfg.JWTSecret
			services.InitCache(cfg.CacheSize)

			if cfg.TemplatesFile != "" {
				list, err := templates.Load(cfg.TemplatesFile)
				if err != nil {
					return err
				}
				if _, err := templates.Seed(database.DB, list); err != nil {
					return err
				}
			}

			app := NewApp()

			go func() {
				quit := make(chan os.Signal, 1)
				signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
				<-quit
				log.Println("Shutting down...")
				_ = app.Shutdown()
			}()

			log.Printf("Server starting on :%s", cfg.Port)
			return app.Listen(":" + cfg.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "okrs-api",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Setup(app)
	return app
}
