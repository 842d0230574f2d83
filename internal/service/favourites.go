package service

import (
	"context"
	"log/slog"

	"github.com/stackmill/storefront/internal/domain"
)

// FavouriteAPI is the slice of the backend client used for favourite
// mutations.
type FavouriteAPI interface {
	AddFavourite(ctx context.Context, token string, productID int64) (int64, error)
	DeleteFavourite(ctx context.Context, token string, favouriteID int64) error
}

// FavouriteService performs the server favourite mutation and keeps
// the session's optimistic id set in sync. The local set is only
// touched after the server accepts the change, so a failed call
// leaves heart-icon state where it was.
type FavouriteService interface {
	// Add favourites a product and returns the server-assigned
	// favourite id (needed to remove it later).
	Add(ctx context.Context, productID int64) (int64, error)

	// Remove deletes the favourite by its server id and drops
	// productID from the cached set.
	Remove(ctx context.Context, favouriteID, productID int64) error
}

type favouriteService struct {
	api     FavouriteAPI
	session *Session
	logger  *slog.Logger
}

// NewFavouriteService creates a FavouriteService.
func NewFavouriteService(apiClient FavouriteAPI, session *Session, logger *slog.Logger) FavouriteService {
	return &favouriteService{
		api:     apiClient,
		session: session,
		logger:  logger.With(slog.String("component", "favourites")),
	}
}

func (s *favouriteService) Add(ctx context.Context, productID int64) (int64, error) {
	token := s.session.Token()
	if token == "" {
		return 0, &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Sign in to save favourites", Op: "favourite.add"}
	}

	favID, err := s.api.AddFavourite(ctx, token, productID)
	if err != nil {
		return 0, err
	}

	s.session.AddFavouriteID(productID)
	return favID, nil
}

func (s *favouriteService) Remove(ctx context.Context, favouriteID, productID int64) error {
	token := s.session.Token()
	if token == "" {
		return &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Sign in to save favourites", Op: "favourite.remove"}
	}

	if err := s.api.DeleteFavourite(ctx, token, favouriteID); err != nil {
		return err
	}

	s.session.RemoveFavouriteID(productID)
	return nil
}
