package domain

import (
	"context"
	"time"
)

// TokenSource hands out a bearer token for the upstream API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	// Invalidate drops the cached token; the next Token call reacquires.
	Invalidate()
}

// HotelSearcher is the geo-search side of the upstream API.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, lat, lon float64) ([]Hotel, error)
}

// SnapshotStore persists the last successfully fetched deal set. Replace is
// delete-all-then-insert-all: there is no incremental merge.
type SnapshotStore interface {
	ReplaceDeals(ctx context.Context, deals []Deal, fetchedAt time.Time) error
	LoadDeals(ctx context.Context) ([]Deal, error)
	LastFetched(ctx context.Context) (time.Time, error)
}

// FavouriteStore tracks per-user saved deal ids.
type FavouriteStore interface {
	ToggleFavourite(ctx context.Context, userID, dealID string) (saved bool, err error)
	ListFavourites(ctx context.Context, userID string) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Location is what the location collaborator resolves for a refresh.
type Location struct {
	Lat, Lon float64
	City     string
}
