package services

import (
	"context"
	"errors"
	"time"

	"github.com/arnold/okrs-api/internal/analytics"
	"github.com/arnold/okrs-api/internal/cache"
	"github.com/arnold/okrs-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Cache lifetimes per endpoint, scaled to query cost. Leaf recalculation does
// not invalidate, so these also bound how stale a read can be.
const (
	HealthScoreTTL        = 2 * time.Minute
	AtRiskTTL             = 2 * time.Minute
	ProgressComparisonTTL = 5 * time.Minute
	DepartmentStatsTTL    = 5 * time.Minute
)

func analyticsKey(endpoint string, scope Scope, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	params["scope"] = scope.CacheKey()
	return cache.Key(cache.AnalyticsPrefix+endpoint, params)
}

// HealthScore blends progress, on-track rate, blocker resolution and
// check-in cadence over the objectives visible to scope.
func HealthScore(ctx context.Context, db *gorm.DB, scope Scope, filter Filter) (analytics.HealthReport, error) {
	key := analyticsKey("health-score", scope, filter.params())
	return cache.Remember(Cache, key, HealthScoreTTL, func() (analytics.HealthReport, error) {
		now := Now()
		objectives, err := scopedObjectives(ctx, db, scope, filter)
		if err != nil {
			return analytics.HealthReport{}, err
		}
		checkIns, blockers, err := loadSignals(ctx, db, objectiveIDs(objectives), now.Add(-analytics.CheckinWindow))
		if err != nil {
			return analytics.HealthReport{}, err
		}
		return analytics.HealthScore(objectives, checkIns, blockers, now), nil
	})
}

// AtRisk lists objectives visible to scope that are behind, stale or blocked.
func AtRisk(ctx context.Context, db *gorm.DB, scope Scope, filter Filter) ([]analytics.RiskAssessment, error) {
	key := analyticsKey("at-risk", scope, filter.params())
	return cache.Remember(Cache, key, AtRiskTTL, func() ([]analytics.RiskAssessment, error) {
		now := Now()
		objectives, err := scopedObjectives(ctx, db, scope, filter)
		if err != nil {
			return nil, err
		}
		checkIns, blockers, err := loadSignals(ctx, db, objectiveIDs(objectives), time.Time{})
		if err != nil {
			return nil, err
		}
		return analytics.AtRisk(objectives, checkIns, blockers, now), nil
	})
}

// ProgressComparison returns the expected-vs-actual series for one objective.
func ProgressComparison(ctx context.Context, db *gorm.DB, scope Scope, objectiveID uuid.UUID) (analytics.Series, error) {
	key := analyticsKey("progress-comparison", scope, map[string]string{"id": objectiveID.String()})
	return cache.Remember(Cache, key, ProgressComparisonTTL, func() (analytics.Series, error) {
		var obj models.Objective
		err := db.WithContext(ctx).First(&obj, "id = ?", objectiveID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !scope.CanView(&obj)) {
			return analytics.Series{}, notFound("Objective")
		}
		if err != nil {
			return analytics.Series{}, err
		}

		var checkIns []models.CheckIn
		if err := db.WithContext(ctx).Where("objective_id = ?", objectiveID).Order("created_at ASC").Find(&checkIns).Error; err != nil {
			return analytics.Series{}, err
		}
		return analytics.Compare(obj, checkIns, Now()), nil
	})
}

// DepartmentStats builds the per-department heatmap. Admins get every
// department; everyone else only their own.
func DepartmentStats(ctx context.Context, db *gorm.DB, scope Scope, filter Filter) ([]analytics.DepartmentStat, error) {
	key := analyticsKey("department-stats", scope, filter.params())
	return cache.Remember(Cache, key, DepartmentStatsTTL, func() ([]analytics.DepartmentStat, error) {
		q := db.WithContext(ctx).Order("name ASC")
		if !scope.IsAdmin() {
			if scope.DepartmentID == nil {
				return []analytics.DepartmentStat{}, nil
			}
			q = q.Where("id = ?", *scope.DepartmentID)
		}
		var departments []models.Department
		if err := q.Find(&departments).Error; err != nil {
			return nil, err
		}
		if len(departments) == 0 {
			return []analytics.DepartmentStat{}, nil
		}

		deptIDs := make([]uuid.UUID, len(departments))
		for i, d := range departments {
			deptIDs[i] = d.ID
		}
		var objectives []models.Objective
		if err := filter.Apply(db.WithContext(ctx).Model(&models.Objective{})).
			Where("department_id IN ?", deptIDs).
			Find(&objectives).Error; err != nil {
			return nil, err
		}

		var blockers []models.Blocker
		if ids := objectiveIDs(objectives); len(ids) > 0 {
			if err := db.WithContext(ctx).Where("objective_id IN ? AND status = ?", ids, models.BlockerOpen).Find(&blockers).Error; err != nil {
				return nil, err
			}
		}
		return analytics.DepartmentStats(departments, objectives, blockers), nil
	})
}

func scopedObjectives(ctx context.Context, db *gorm.DB, scope Scope, filter Filter) ([]models.Objective, error) {
	var objectives []models.Objective
	q := scope.Apply(filter.Apply(db.WithContext(ctx).Model(&models.Objective{})))
	if err := q.Order("created_at ASC").Find(&objectives).Error; err != nil {
		return nil, err
	}
	return objectives, nil
}

// loadSignals fetches check-ins (optionally since a cutoff) and blockers for
// the given objectives concurrently.
func loadSignals(ctx context.Context, db *gorm.DB, ids []uuid.UUID, since time.Time) ([]models.CheckIn, []models.Blocker, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var checkIns []models.CheckIn
	var blockers []models.Blocker
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := db.WithContext(gctx).Where("objective_id IN ?", ids)
		if !since.IsZero() {
			q = q.Where("created_at >= ?", since)
		}
		return q.Find(&checkIns).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).Where("objective_id IN ?", ids).Find(&blockers).Error
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return checkIns, blockers, nil
}

func objectiveIDs(objectives []models.Objective) []uuid.UUID {
	ids := make([]uuid.UUID, len(objectives))
	for i, o := range objectives {
		ids[i] = o.ID
	}
	return ids
}
