package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stackmill/storefront/internal/api"
	"github.com/stackmill/storefront/internal/domain"
	"github.com/stackmill/storefront/internal/events"
	"github.com/stackmill/storefront/internal/telemetry"
)

// memKV is an in-memory KV standing in for localstore.Store.
type memKV struct {
	data   map[string]string
	getErr error
	putErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memKV) Put(key, value string) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

// mockAuthAPI implements AuthAPI for testing.
type mockAuthAPI struct {
	loginFunc func(ctx context.Context, creds api.Credentials) (string, error)
	meFunc    func(ctx context.Context, token string) (*api.Profile, error)
}

func (m *mockAuthAPI) Login(ctx context.Context, creds api.Credentials) (string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, creds)
	}
	return "mock-token", nil
}

func (m *mockAuthAPI) Me(ctx context.Context, token string) (*api.Profile, error) {
	if m.meFunc != nil {
		return m.meFunc(ctx, token)
	}
	return &api.Profile{ID: 1, Username: "buyer", Email: "buyer@example.com", RoleName: domain.RoleCustomer}, nil
}

type addCall struct {
	productID int64
	quantity  int64
}

// mockCartAPI implements CartAPI for testing.
type mockCartAPI struct {
	addFunc    func(ctx context.Context, token string, productID, quantity int64) error
	cartFunc   func(ctx context.Context, token string) ([]domain.CartItem, error)
	removeFunc func(ctx context.Context, token string, cartItemID int64) error
	clearFunc  func(ctx context.Context, token string) error

	addCalls []addCall
}

func (m *mockCartAPI) AddCartItem(ctx context.Context, token string, productID, quantity int64) error {
	if m.addFunc != nil {
		if err := m.addFunc(ctx, token, productID, quantity); err != nil {
			return err
		}
	}
	m.addCalls = append(m.addCalls, addCall{productID: productID, quantity: quantity})
	return nil
}

func (m *mockCartAPI) Cart(ctx context.Context, token string) ([]domain.CartItem, error) {
	if m.cartFunc != nil {
		return m.cartFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockCartAPI) RemoveCartItem(ctx context.Context, token string, cartItemID int64) error {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, token, cartItemID)
	}
	return nil
}

func (m *mockCartAPI) ClearCart(ctx context.Context, token string) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx, token)
	}
	return nil
}

// mockFavouriteAPI implements FavouriteAPI for testing.
type mockFavouriteAPI struct {
	addFunc    func(ctx context.Context, token string, productID int64) (int64, error)
	deleteFunc func(ctx context.Context, token string, favouriteID int64) error
}

func (m *mockFavouriteAPI) AddFavourite(ctx context.Context, token string, productID int64) (int64, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, token, productID)
	}
	return 101, nil
}

func (m *mockFavouriteAPI) DeleteFavourite(ctx context.Context, token string, favouriteID int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token, favouriteID)
	}
	return nil
}

// mockProducts implements ProductFetcher for testing.
type mockProducts struct {
	productFunc func(ctx context.Context, productID int64) (*domain.Product, error)
}

func (m *mockProducts) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	if m.productFunc != nil {
		return m.productFunc(ctx, productID)
	}
	return nil, errors.New("no product configured")
}

type testDeps struct {
	kv      *memKV
	bus     *events.Bus
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	return testDeps{
		kv:      newMemKV(),
		bus:     events.NewBus(),
		metrics: telemetry.NewMetrics(prometheus.NewRegistry()),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// authedSession builds a session already holding a token and user,
// skipping the network round trip.
func authedSession(t *testing.T, deps testDeps, token string) *Session {
	t.Helper()

	auth := &mockAuthAPI{
		loginFunc: func(ctx context.Context, creds api.Credentials) (string, error) {
			return token, nil
		},
	}
	session := NewSession(deps.kv, auth, deps.metrics, deps.logger)
	if err := session.LoginWithToken(context.Background(), token); err != nil {
		t.Fatalf("failed to build authenticated session: %v", err)
	}
	return session
}
