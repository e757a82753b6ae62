// Package testutil provides an isolated in-memory database for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// A single connection keeps the in-memory schema alive for the whole test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// MustCreate inserts value or fails the test.
func MustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

// Department creates a department.
func Department(t *testing.T, db *gorm.DB, name string) models.Department {
	t.Helper()
	d := models.Department{Name: name}
	MustCreate(t, db, &d)
	return d
}

// User creates a user with the given role, optionally in a department.
func User(t *testing.T, db *gorm.DB, name, role string, dept *models.Department) models.User {
	t.Helper()
	u := models.User{Name: name, Email: strings.ToLower(name) + "-" + uuid.NewString()[:6] + "@example.com", Role: role}
	if dept != nil {
		id := dept.ID
		u.DepartmentID = &id
	}
	MustCreate(t, db, &u)
	return u
}
