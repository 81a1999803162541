package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"roomrush/internal/domain"
)

// FavouriteService toggles and lists a user's saved deal ids.
type FavouriteService struct {
	store domain.FavouriteStore
}

func NewFavouriteService(s domain.FavouriteStore) *FavouriteService {
	return &FavouriteService{store: s}
}

// Toggle flips the saved state for (userID, dealID) and reports the new state.
func (s *FavouriteService) Toggle(ctx context.Context, userID, dealID string) (bool, error) {
	saved, err := s.store.ToggleFavourite(ctx, userID, dealID)
	if err != nil {
		return false, err
	}
	log.Info().Str("user", userID).Str("deal", dealID).Bool("saved", saved).Msg("favourite toggled")
	return saved, nil
}

func (s *FavouriteService) List(ctx context.Context, userID string) ([]string, error) {
	return s.store.ListFavourites(ctx, userID)
}
