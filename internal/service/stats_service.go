package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// StatsService serves the read-only admin aggregation
type StatsService struct {
	store store.Store
	now   func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st, now: time.Now}
}

// AdminStats returns the store-wide counters for the admin panel
func (s *StatsService) AdminStats(ctx context.Context) (*models.StoreStats, error) {
	ctx, span := util.StartSpan(ctx, "StatsService.AdminStats")
	defer span.End()

	today := s.now().Format(models.DateLayout)
	return s.store.Stats(ctx, today)
}
