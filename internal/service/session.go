package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/stackmill/storefront/internal/api"
	"github.com/stackmill/storefront/internal/domain"
	"github.com/stackmill/storefront/internal/localstore"
	"github.com/stackmill/storefront/internal/telemetry"
)

// AuthAPI is the slice of the backend client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Me(ctx context.Context, token string) (*api.Profile, error)
}

// Session is the single source of truth for who is logged in. It is
// created once at startup and lives for the process. Two states:
// anonymous and authenticated; the only path into authenticated is a
// successful profile fetch, and any failed fetch resets to anonymous.
//
// The favourite-id set is the client's only cached view of favourite
// state. It is optimistically mutated and may drift from the server
// if a concurrent mutation happens elsewhere; Refresh re-syncs it.
type Session struct {
	kv      KV
	auth    AuthAPI
	metrics *telemetry.Metrics
	logger  *slog.Logger

	mu         sync.RWMutex
	token      string
	user       *domain.User
	favourites domain.FavouriteSet
	loading    bool
}

// NewSession creates an anonymous session store.
func NewSession(kv KV, auth AuthAPI, metrics *telemetry.Metrics, logger *slog.Logger) *Session {
	return &Session{
		kv:         kv,
		auth:       auth,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "session")),
		favourites: make(domain.FavouriteSet),
	}
}

// Start resumes a previous session: if a token was persisted, the
// profile is fetched and the session becomes authenticated. A missing
// token or a failed fetch leaves the session anonymous without error;
// storage errors surface.
func (s *Session) Start(ctx context.Context) error {
	token, ok, err := s.kv.Get(localstore.KeyAuthToken)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		return nil
	}

	if err := s.adopt(ctx, token); err != nil {
		s.logger.Info("stored token rejected, starting anonymous", slog.String("error", err.Error()))
	}
	return nil
}

// Login authenticates with the backend, persists the token, and
// fetches the profile. On any failure the session stays (or becomes)
// anonymous and the error is returned; there is no retry.
func (s *Session) Login(ctx context.Context, email, password string) error {
	token, err := s.auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		s.metrics.LoginFailures.Inc()
		return err
	}

	if err := s.adopt(ctx, token); err != nil {
		s.metrics.LoginFailures.Inc()
		return err
	}

	s.metrics.Logins.Inc()
	return nil
}

// LoginWithToken persists an externally obtained bearer token and
// fetches the profile for it.
func (s *Session) LoginWithToken(ctx context.Context, token string) error {
	if err := s.adopt(ctx, token); err != nil {
		s.metrics.LoginFailures.Inc()
		return err
	}
	s.metrics.Logins.Inc()
	return nil
}

// adopt persists token, then runs the profile fetch that decides
// whether the session is authenticated.
func (s *Session) adopt(ctx context.Context, token string) error {
	if err := s.kv.Put(localstore.KeyAuthToken, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return s.fetchProfile(ctx)
}

// Logout drops the token and resets to anonymous. No network call.
func (s *Session) Logout() {
	if err := s.kv.Delete(localstore.KeyAuthToken); err != nil {
		s.logger.Warn("failed to delete stored token", slog.String("error", err.Error()))
	}
	s.reset()
}

// Refresh re-fetches the profile for the current token, re-syncing
// the favourite set. A failed refresh resets to anonymous.
func (s *Session) Refresh(ctx context.Context) error {
	return s.fetchProfile(ctx)
}

// fetchProfile is the only transition into the authenticated state.
// Any failure resets to anonymous and returns the cause.
func (s *Session) fetchProfile(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if token == "" {
		s.reset()
		return &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Not signed in", Op: "session.profile"}
	}

	profile, err := s.auth.Me(ctx, token)
	if err != nil {
		s.reset()
		return err
	}

	s.mu.Lock()
	s.user = profile.User()
	s.favourites = domain.CoerceFavouriteIDs(profile.FavouriteProductIDs)
	s.mu.Unlock()

	s.logger.Debug("profile loaded",
		slog.Int64("user_id", profile.ID),
		slog.String("role", profile.RoleName))
	return nil
}

func (s *Session) reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.favourites = make(domain.FavouriteSet)
	s.mu.Unlock()
}

// IsAuthenticated reports whether a profile fetch has succeeded for
// the current token.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Loading reports whether a profile fetch is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns the authenticated user, or nil when anonymous.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the current bearer token ("" when anonymous).
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// FavouriteIDs returns a copy of the cached favourite set.
func (s *Session) FavouriteIDs() domain.FavouriteSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favourites.Clone()
}

// IsFavourite reports whether productID is in the cached set.
func (s *Session) IsFavourite(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favourites.Has(productID)
}

// AddFavouriteID optimistically records a favourite locally. The
// caller performs the server mutation separately.
func (s *Session) AddFavouriteID(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favourites[productID] = struct{}{}
}

// RemoveFavouriteID optimistically drops a favourite locally.
func (s *Session) RemoveFavouriteID(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favourites, productID)
}
