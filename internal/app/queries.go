package app

import (
	"context"
	"fmt"
	"time"

	"roomrush/internal/domain"
)

func listingKey(category string) string { return fmt.Sprintf("deals:%s", category) }

// QueryService is the read side of the deal list: filtered listings served
// through the cache with a TTL, invalidated by DealService on every
// successful refresh.
type QueryService struct {
	deals    *DealService
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(d *DealService, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{deals: d, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListDeals(ctx context.Context, category string) ([]domain.Deal, error) {
	key := listingKey(category)
	var cached []domain.Deal
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	out := s.deals.ApplyFilter(category)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}
