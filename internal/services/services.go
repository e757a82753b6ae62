package services

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/arnold/okrs-api/internal/cache"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cache memoizes analytics reads. Nil disables caching.
var Cache *cache.Cache

// Now is the engine clock; tests pin it.
var Now = time.Now

// InitCache creates the analytics cache.
func InitCache(size int) {
	Cache = cache.New(size)
	log.Printf("Analytics cache enabled (max %d entries)", size)
}

func invalidateAnalytics(reason string) {
	if Cache == nil {
		return
	}
	n := Cache.InvalidatePrefix(cache.AnalyticsPrefix)
	log.Printf("cache: dropped %d analytics entries after %s", n, reason)
}

// Scope is the caller identity resolved by the auth middleware.
type Scope struct {
	UserID       uuid.UUID
	Role         string
	DepartmentID *uuid.UUID
}

func (s Scope) IsAdmin() bool   { return s.Role == models.RoleAdmin }
func (s Scope) IsManager() bool { return s.Role == models.RoleManager }

// Apply restricts an objectives query to what the caller may see: admins see
// everything, managers their department, everyone else their own objectives.
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	switch {
	case s.IsAdmin():
		return q
	case s.IsManager() && s.DepartmentID != nil:
		return q.Where("(objectives.department_id = ? OR objectives.owner_id = ?)", *s.DepartmentID, s.UserID)
	default:
		return q.Where("objectives.owner_id = ?", s.UserID)
	}
}

// CanView reports whether a single objective is visible to the caller.
// Company objectives are visible organization-wide.
func (s Scope) CanView(o *models.Objective) bool {
	switch {
	case s.IsAdmin(), o.Type == models.ObjectiveCompany, o.OwnerID == s.UserID:
		return true
	case s.IsManager() && s.DepartmentID != nil && o.DepartmentID != nil:
		return *s.DepartmentID == *o.DepartmentID
	default:
		return false
	}
}

// CanEdit reports whether the caller may change an objective or the progress
// feeding it. Company objectives are limited to their owner and admins.
func (s Scope) CanEdit(o *models.Objective) bool {
	switch {
	case s.IsAdmin(), o.OwnerID == s.UserID:
		return true
	case o.Type == models.ObjectiveCompany:
		return false
	default:
		return s.managesDepartment(o.DepartmentID)
	}
}

func (s Scope) managesDepartment(id *uuid.UUID) bool {
	return s.IsManager() && s.DepartmentID != nil && id != nil && *s.DepartmentID == *id
}

// authorizeLink checks write access to the objective a task or KPI points at,
// directly or through its key result. Links that no longer resolve pass.
func authorizeLink(tx *gorm.DB, scope Scope, objectiveID, krID *uuid.UUID) error {
	if scope.IsAdmin() {
		return nil
	}
	if krID != nil {
		kr, found, err := findKeyResult(tx, *krID)
		if err != nil {
			return err
		}
		if found {
			objectiveID = &kr.ObjectiveID
		}
	}
	if objectiveID == nil {
		return nil
	}

	var obj models.Objective
	err := tx.First(&obj, "id = ?", *objectiveID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !scope.CanEdit(&obj) {
		return forbiddenf("You cannot change progress on this objective")
	}
	return nil
}

// CacheKey identifies the visibility class for cache keys.
func (s Scope) CacheKey() string {
	switch {
	case s.IsAdmin():
		return "all"
	case s.IsManager() && s.DepartmentID != nil:
		return "dept:" + s.DepartmentID.String() + ":" + s.UserID.String()
	default:
		return "user:" + s.UserID.String()
	}
}

// Filter narrows objective sets to a period.
type Filter struct {
	Quarter string
	Year    int
}

func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	if f.Quarter != "" {
		q = q.Where("objectives.quarter = ?", f.Quarter)
	}
	if f.Year > 0 {
		q = q.Where("objectives.year = ?", f.Year)
	}
	return q
}

func (f Filter) params() map[string]string {
	p := map[string]string{"quarter": f.Quarter}
	if f.Year > 0 {
		p["year"] = strconv.Itoa(f.Year)
	}
	return p
}
