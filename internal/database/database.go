package database

import (
	"strings"

	"github.com/arnold/okrs-api/internal/config"
	"github.com/arnold/okrs-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector

	// Use PostgreSQL if URL starts with postgres, otherwise SQLite
	if strings.HasPrefix(cfg.DatabaseURL, "postgres") {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.DatabaseURL)
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return err
	}

	DB = db
	return nil
}

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Department{},
		&models.User{},
		&models.Workgroup{},
		&models.ObjectiveTemplate{},
		&models.Objective{},
		&models.KeyResult{},
		&models.KPI{},
		&models.Task{},
		&models.CheckIn{},
		&models.Blocker{},
		&models.Notification{},
	}
}

func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
