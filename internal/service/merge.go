package service

import (
	"context"
	"log/slog"

	"github.com/stackmill/storefront/internal/domain"
	"github.com/stackmill/storefront/internal/telemetry"
)

// CartAdder is the slice of the backend client the merge needs.
type CartAdder interface {
	AddCartItem(ctx context.Context, token string, productID, quantity int64) error
}

// MergeService folds the anonymous guest cart into the authenticated
// server-side cart, once, at the moment of login.
type MergeService interface {
	// Merge drains the guest cart into the server cart with one
	// sequential add-to-cart call per line. Returns false with no
	// calls issued when the guest cart is empty.
	//
	// Each line that lands server-side is dropped from the local cart
	// immediately, so a mid-loop failure persists only the unmerged
	// tail: the next login retries exactly the lines that never made
	// it, and nothing is submitted twice. Full success leaves the
	// guest cart empty and returns true.
	Merge(ctx context.Context) (bool, error)
}

type mergeService struct {
	guest   GuestCartService
	session *Session
	cart    CartAdder
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewMergeService creates a MergeService.
func NewMergeService(guest GuestCartService, session *Session, cart CartAdder, metrics *telemetry.Metrics, logger *slog.Logger) MergeService {
	return &mergeService{
		guest:   guest,
		session: session,
		cart:    cart,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "merge")),
	}
}

func (m *mergeService) Merge(ctx context.Context) (bool, error) {
	items := m.guest.Items()
	if len(items) == 0 {
		return false, nil
	}

	token := m.session.Token()
	if token == "" {
		return false, &domain.Error{Code: domain.EUNAUTHORIZED, Message: "Sign in before merging the cart", Op: "cart.merge"}
	}

	m.metrics.MergeRuns.Inc()

	for i, item := range items {
		// Items() already enforces the cart invariant; this guards
		// against a caller handing Set an unvalidated list in the
		// same process tick.
		if item.ProductID <= 0 || item.Quantity <= 0 {
			continue
		}

		if err := m.cart.AddCartItem(ctx, token, item.ProductID, item.Quantity); err != nil {
			m.metrics.MergeFailures.Inc()
			m.logger.Warn("merge aborted mid-loop",
				slog.Int64("product_id", item.ProductID),
				slog.Int("merged", i),
				slog.Int("remaining", len(items)-i),
				slog.String("error", err.Error()))

			// Keep only the unmerged tail locally so a retry never
			// re-submits lines the server already has.
			if setErr := m.guest.Set(items[i:]); setErr != nil {
				m.logger.Warn("failed to persist unmerged tail", slog.String("error", setErr.Error()))
			}
			return false, err
		}

		m.metrics.MergeItems.Inc()
	}

	if err := m.guest.Clear(); err != nil {
		return true, err
	}

	m.logger.Info("guest cart merged", slog.Int("items", len(items)))
	return true, nil
}
