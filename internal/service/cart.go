package service

import (
	"context"
	"log/slog"

	"github.com/stackmill/storefront/internal/domain"
	"github.com/stackmill/storefront/internal/events"
	"github.com/stackmill/storefront/internal/telemetry"
)

// CartAPI is the slice of the backend client the authenticated cart
// facade needs.
type CartAPI interface {
	CartAdder
	Cart(ctx context.Context, token string) ([]domain.CartItem, error)
	RemoveCartItem(ctx context.Context, token string, cartItemID int64) error
	ClearCart(ctx context.Context, token string) error
}

// CartService is the authenticated cart facade. The server owns the
// cart; nothing is cached here. Pages re-fetch Items on every render
// and mutations broadcast events.TopicCartUpdated for listeners such
// as the header badge.
type CartService interface {
	Items(ctx context.Context) ([]domain.CartItem, error)
	Add(ctx context.Context, productID, quantity int64) error
	Remove(ctx context.Context, cartItemID int64) error
	Clear(ctx context.Context) error
}

type cartService struct {
	api     CartAPI
	session *Session
	bus     *events.Bus
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewCartService creates the authenticated cart facade.
func NewCartService(apiClient CartAPI, session *Session, bus *events.Bus, metrics *telemetry.Metrics, logger *slog.Logger) CartService {
	return &cartService{
		api:     apiClient,
		session: session,
		bus:     bus,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "cart")),
	}
}

func (s *cartService) Items(ctx context.Context) ([]domain.CartItem, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	s.metrics.CartRequests.WithLabelValues("fetch").Inc()
	return s.api.Cart(ctx, token)
}

func (s *cartService) Add(ctx context.Context, productID, quantity int64) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	if err := s.api.AddCartItem(ctx, token, productID, quantity); err != nil {
		return err
	}
	s.metrics.CartRequests.WithLabelValues("add").Inc()
	s.bus.Publish(events.TopicCartUpdated)
	return nil
}

func (s *cartService) Remove(ctx context.Context, cartItemID int64) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	if err := s.api.RemoveCartItem(ctx, token, cartItemID); err != nil {
		return err
	}
	s.metrics.CartRequests.WithLabelValues("remove").Inc()
	s.bus.Publish(events.TopicCartUpdated)
	return nil
}

func (s *cartService) Clear(ctx context.Context) error {
	token, err := s.requireToken()
	if err != nil {
		return err
	}
	if err := s.api.ClearCart(ctx, token); err != nil {
		return err
	}
	s.metrics.CartRequests.WithLabelValues("clear").Inc()
	s.bus.Publish(events.TopicCartUpdated)
	return nil
}

func (s *cartService) requireToken() (string, error) {
	token := s.session.Token()
	if token == "" {
		return "", &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Sign in to use the cart", Op: "cart"}
	}
	return token, nil
}
