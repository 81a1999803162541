package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"roomrush/internal/adapters/observability"
	"roomrush/internal/domain"
)

// Filter categories exposed by the presentation layer.
const (
	FilterAll      = "All Deals"
	FilterHotels   = "Hotels"
	FilterHostels  = "Hostels"
	FilterUnder100 = "Under $100"
)

// Filters lists the categories in display order.
var Filters = []string{FilterAll, FilterHotels, FilterHostels, FilterUnder100}

type RefreshRequest struct {
	Lat, Lon float64
	City     string
	// Force bypasses refresh coalescing (manual pull-to-refresh).
	Force bool
}

// DealService owns the deal-fetch-and-cache pipeline: search the upstream,
// synthesize deals, replace the persisted snapshot, and fall back to the last
// snapshot when anything fails. It is the only writer of the active deal list.
type DealService struct {
	gateway  domain.HotelSearcher
	store    domain.SnapshotStore
	cache    domain.Cache
	timeout  time.Duration
	freshFor time.Duration

	mu          sync.Mutex
	deals       []domain.Deal
	status      domain.FetchStatus
	lastFetched time.Time
	inflight    *refreshRun
}

type refreshRun struct {
	done   chan struct{}
	status domain.FetchStatus
}

// NewDealService wires the pipeline. freshFor is the recency window inside
// which ambient refreshes are skipped outright; zero disables the guard.
func NewDealService(g domain.HotelSearcher, s domain.SnapshotStore, c domain.Cache, timeout, freshFor time.Duration) *DealService {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &DealService{gateway: g, store: s, cache: c, timeout: timeout, freshFor: freshFor}
}

// Warm loads the persisted snapshot into memory without touching the network,
// so a restarted process serves the last known deals immediately.
func (s *DealService) Warm(ctx context.Context) {
	deals, err := s.store.LoadDeals(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot warm-up failed")
		return
	}
	ts, _ := s.store.LastFetched(ctx)

	s.mu.Lock()
	if s.status == domain.StatusIdle {
		s.deals = deals
		s.lastFetched = ts
	}
	s.mu.Unlock()
}

// Refresh runs the pipeline for the given location. An ambient refresh joins
// the in-flight run instead of duplicating it; a forced refresh always starts
// a new run (last writer wins on the active list). The returned channel
// yields the run's final status once.
//
// The pipeline is detached from the caller's context: a caller that goes away
// mid-flight must not cancel the upstream call or the snapshot write.
func (s *DealService) Refresh(ctx context.Context, req RefreshRequest) <-chan domain.FetchStatus {
	s.mu.Lock()
	if s.inflight != nil && !req.Force {
		run := s.inflight
		s.mu.Unlock()
		return awaitRun(run)
	}
	if !req.Force && s.freshFor > 0 && s.status == domain.StatusLoaded &&
		!s.lastFetched.IsZero() && time.Since(s.lastFetched) < s.freshFor {
		status := s.status
		s.mu.Unlock()
		ch := make(chan domain.FetchStatus, 1)
		ch <- status
		return ch
	}
	run := &refreshRun{done: make(chan struct{})}
	s.inflight = run
	s.status = domain.StatusLoading
	s.mu.Unlock()

	go s.run(context.WithoutCancel(ctx), run, req)
	return awaitRun(run)
}

func awaitRun(run *refreshRun) <-chan domain.FetchStatus {
	ch := make(chan domain.FetchStatus, 1)
	go func() {
		<-run.done
		ch <- run.status
	}()
	return ch
}

func (s *DealService) run(ctx context.Context, run *refreshRun, req RefreshRequest) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	hotels, err := s.gateway.SearchHotels(ctx, req.Lat, req.Lon)
	if err != nil {
		log.Warn().Err(err).Float64("lat", req.Lat).Float64("lon", req.Lon).
			Msg("hotel search failed, serving cached snapshot")
		s.finish(ctx, run, domain.StatusOfflineFallback)
		return
	}

	now := time.Now()
	deals := synthesizeDeals(hotels, req.City)
	if err := s.store.ReplaceDeals(ctx, deals, now); err != nil {
		log.Warn().Err(err).Msg("snapshot write failed, serving cached snapshot")
		s.finish(ctx, run, domain.StatusOfflineFallback)
		return
	}
	s.invalidateListings(ctx)

	s.mu.Lock()
	s.deals = deals
	s.status = domain.StatusLoaded
	s.lastFetched = now
	if s.inflight == run {
		s.inflight = nil
	}
	s.mu.Unlock()

	observability.ObserveRefresh("loaded", time.Since(start))
	log.Info().Int("deals", len(deals)).Str("city", req.City).
		Dur("duration", time.Since(start)).Msg("refresh ok")

	run.status = domain.StatusLoaded
	close(run.done)
}

// finish handles every failure path uniformly: reload the last persisted
// snapshot (empty on first-run failure) and flag offline-fallback.
func (s *DealService) finish(ctx context.Context, run *refreshRun, status domain.FetchStatus) {
	cached, err := s.store.LoadDeals(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot reload failed")
		cached = nil
	}
	ts, _ := s.store.LastFetched(ctx)

	s.mu.Lock()
	s.deals = cached
	s.status = status
	s.lastFetched = ts
	if s.inflight == run {
		s.inflight = nil
	}
	s.mu.Unlock()

	observability.ObserveRefresh("fallback", 0)

	run.status = status
	close(run.done)
}

// invalidateListings evicts the read-side listing caches after a snapshot
// replace so stale filtered lists aren't served.
func (s *DealService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, f := range Filters {
		_ = s.cache.Del(ctx, listingKey(f))
	}
}

// Deals returns a copy of the active deal list.
func (s *DealService) Deals() []domain.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Deal, len(s.deals))
	copy(out, s.deals)
	return out
}

func (s *DealService) Status() domain.FetchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *DealService) LastFetched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetched
}

// UpdatedAgo renders the header's "Updated ..." suffix.
func (s *DealService) UpdatedAgo() string {
	ts := s.LastFetched()
	if ts.IsZero() {
		return "just now"
	}
	return timeAgo(ts, time.Now())
}

// ApplyFilter returns the subset of the active list matching category,
// preserving order. Unknown categories behave like "All Deals". Pure: never
// triggers network access.
func (s *DealService) ApplyFilter(category string) []domain.Deal {
	return FilterDeals(s.Deals(), category)
}

// FilterDeals filters an arbitrary deal list by category.
func FilterDeals(deals []domain.Deal, category string) []domain.Deal {
	switch category {
	case FilterHotels:
		return filter(deals, func(d domain.Deal) bool { return d.Type == "Hotel" })
	case FilterHostels:
		return filter(deals, func(d domain.Deal) bool { return d.Type == "Hostel" })
	case FilterUnder100:
		return filter(deals, func(d domain.Deal) bool { return d.Price < 100 })
	default:
		return deals
	}
}

func filter(deals []domain.Deal, keep func(domain.Deal) bool) []domain.Deal {
	out := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
