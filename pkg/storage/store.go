// Package storage persists foods, API usage records, and search metrics in
// a relational store behind small per-consumer interfaces.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/nblkmal/nutrition-hub/pkg/stats"
)

// ErrNotFound indicates the requested food slug has no stored row.
var ErrNotFound = errors.New("food not found")

// Store is the sqlite-backed implementation of the lookup, quota, and stats
// persistence interfaces.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return newStore(db)
}

// OpenInMemory opens an isolated in-memory database, one per call.
// Intended for tests. The shared-cache DSN keeps every pooled connection
// attached to the same in-memory database; a plain ":memory:" would give
// each connection its own.
func OpenInMemory() (*Store, error) {
	name := fmt.Sprintf("memdb-%d", atomic.AddInt64(&memDBCounter, 1))
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}

var memDBCounter int64

func newStore(db *gorm.DB) (*Store, error) {
	// Concurrent lookups write from many goroutines; make sqlite wait on
	// the write lock instead of returning SQLITE_BUSY.
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := db.AutoMigrate(&Food{}, &APIUsageLog{}, &SearchMetric{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// FoodBySlug returns the food row for the given slug, or ErrNotFound.
func (s *Store) FoodBySlug(ctx context.Context, foodSlug string) (*Food, error) {
	var food Food
	err := s.db.WithContext(ctx).Where("slug = ?", foodSlug).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query food by slug: %w", err)
	}
	return &food, nil
}

// InsertFoodIfAbsent inserts the food unless a row with the same slug
// already exists, in which case the insert is silently ignored. N
// concurrent inserts for the same slug converge to exactly one stored row;
// callers re-read by slug to pick up whichever writer won.
func (s *Store) InsertFoodIfAbsent(ctx context.Context, food *Food) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(food).Error
	if err != nil {
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

// UpsertFood inserts the food or, when the slug already exists, refreshes
// its nutrient values and updated_at. Used by the seed path only; the slug
// itself is never changed.
func (s *Store) UpsertFood(ctx context.Context, food *Food) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "calories", "protein_g", "carbohydrates_total_g",
			"fat_total_g", "fat_saturated_g", "fiber_g", "sugar_g",
			"sodium_mg", "potassium_mg", "cholesterol_mg", "updated_at",
		}),
	}).Create(food).Error
	if err != nil {
		return fmt.Errorf("upsert food: %w", err)
	}
	return nil
}

// DeleteFoodsBySource removes all rows with the given provenance tag.
// Used by the seed command's reset mode.
func (s *Store) DeleteFoodsBySource(ctx context.Context, source string) (int64, error) {
	result := s.db.WithContext(ctx).Where("data_source = ?", source).Delete(&Food{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete foods by source: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountFoods returns the total number of stored foods.
func (s *Store) CountFoods(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Food{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count foods: %w", err)
	}
	return n, nil
}

// CountFoodsBySource returns the number of foods with the given provenance.
func (s *Store) CountFoodsBySource(ctx context.Context, source string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Food{}).Where("data_source = ?", source).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count foods by source: %w", err)
	}
	return n, nil
}

// AppendUsageLog appends one provider-call record for the quota ledger.
func (s *Store) AppendUsageLog(ctx context.Context, endpoint string) error {
	err := s.db.WithContext(ctx).Create(&APIUsageLog{APIEndpoint: endpoint}).Error
	if err != nil {
		return fmt.Errorf("append usage log: %w", err)
	}
	return nil
}

// CountUsageSince counts provider-call records created at or after since.
func (s *Store) CountUsageSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&APIUsageLog{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count usage logs: %w", err)
	}
	return n, nil
}

// AppendSearchMetric appends one lookup metric row.
func (s *Store) AppendSearchMetric(ctx context.Context, m stats.Metric) error {
	row := SearchMetric{
		Query:          m.Query,
		Slug:           m.Slug,
		CacheHit:       m.CacheHit,
		ResponseTimeMs: m.ResponseTimeMs,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append search metric: %w", err)
	}
	return nil
}

// SearchStatsSince aggregates hit/miss counts and average latency over
// metrics created at or after since.
func (s *Store) SearchStatsSince(ctx context.Context, since time.Time) (stats.Aggregate, error) {
	var agg stats.Aggregate
	err := s.db.WithContext(ctx).Model(&SearchMetric{}).
		Select(
			"COALESCE(SUM(CASE WHEN cache_hit THEN 1 ELSE 0 END), 0) AS hits, "+
				"COALESCE(SUM(CASE WHEN cache_hit THEN 0 ELSE 1 END), 0) AS misses, "+
				"COALESCE(AVG(response_time_ms), 0) AS avg_latency_ms").
		Where("created_at >= ?", since).
		Scan(&agg).Error
	if err != nil {
		return stats.Aggregate{}, fmt.Errorf("aggregate search metrics: %w", err)
	}
	return agg, nil
}
