package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stackmill/storefront/internal/domain"
	"github.com/stackmill/storefront/internal/events"
	"github.com/stackmill/storefront/internal/localstore"
	"github.com/stackmill/storefront/internal/telemetry"
)

// KV is the durable local storage client state lives in.
// *localstore.Store satisfies it.
type KV interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Delete(key string) error
}

// ProductFetcher is the slice of the backend client used to enrich
// placeholder snapshots.
type ProductFetcher interface {
	Product(ctx context.Context, productID int64) (*domain.Product, error)
}

// GuestCartService maintains the anonymous, durable, local shopping
// cart. Reads never fail: corrupt or unavailable storage degrades to
// an empty cart. Every mutation persists first, then broadcasts
// events.TopicCartUpdated so decoupled listeners can re-pull.
type GuestCartService interface {
	// Items returns the validated cart in stored order.
	Items() []domain.LineItem

	// Set overwrites the cart with a normalized copy of items.
	Set(items []domain.LineItem) error

	// Add appends an item, or if the product is already present adds
	// the quantities and overlays the snapshot (new fields win).
	Add(item domain.LineItem) error

	// UpdateQuantity sets an item's quantity, flooring at zero. An
	// item that reaches zero is removed from the persisted list.
	UpdateQuantity(productID, quantity int64) error

	// Increment adjusts an item's quantity by delta (which may be
	// negative). A missing item with a positive delta is created with
	// a placeholder snapshot; an item adjusted to zero or below is
	// dropped.
	Increment(productID, delta int64) error

	// Remove drops the item for productID if present.
	Remove(productID int64) error

	// Clear erases the persisted cart entirely.
	Clear() error

	// Enrich replaces the item's snapshot with fresh product data,
	// for entries created through Increment's placeholder path.
	Enrich(ctx context.Context, productID int64) error
}

type guestCartService struct {
	kv       KV
	products ProductFetcher
	bus      *events.Bus
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewGuestCartService creates a GuestCartService over kv.
func NewGuestCartService(kv KV, products ProductFetcher, bus *events.Bus, metrics *telemetry.Metrics, logger *slog.Logger) GuestCartService {
	return &guestCartService{
		kv:       kv,
		products: products,
		bus:      bus,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "guestcart")),
	}
}

func (s *guestCartService) Items() []domain.LineItem {
	raw, ok, err := s.kv.Get(localstore.KeyGuestCart)
	if err != nil {
		// Availability over strict durability: a broken read is an
		// empty cart, not a failure the UI has to handle.
		s.logger.Warn("guest cart read failed, treating as empty", slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return nil
	}
	return domain.DecodeLineItems([]byte(raw))
}

func (s *guestCartService) Set(items []domain.LineItem) error {
	return s.write("set", domain.NormalizeLineItems(items))
}

func (s *guestCartService) Add(item domain.LineItem) error {
	if item.ProductID <= 0 || item.Quantity <= 0 {
		return &domain.Error{Code: domain.EINVALID, Message: "Item needs a product id and a positive quantity", Op: "guestcart.add"}
	}

	items := s.Items()
	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			items[i].Snapshot = domain.MergeSnapshot(items[i].Snapshot, item.Snapshot)
			merged = true
			break
		}
	}
	if !merged {
		item.Snapshot = domain.MergeSnapshot(domain.PlaceholderSnapshot(item.ProductID), item.Snapshot)
		items = append(items, item)
	}

	return s.write("add", items)
}

func (s *guestCartService) UpdateQuantity(productID, quantity int64) error {
	if quantity < 0 {
		quantity = 0
	}

	items := s.Items()
	out := items[:0]
	for _, item := range items {
		if item.ProductID == productID {
			if quantity == 0 {
				continue
			}
			item.Quantity = quantity
		}
		out = append(out, item)
	}

	return s.write("update", out)
}

func (s *guestCartService) Increment(productID, delta int64) error {
	items := s.Items()

	found := false
	out := items[:0]
	for _, item := range items {
		if item.ProductID == productID {
			found = true
			item.Quantity += delta
			if item.Quantity <= 0 {
				continue
			}
		}
		out = append(out, item)
	}

	if !found && delta > 0 && productID > 0 {
		// The caller only had an id on hand; enrich the snapshot later.
		out = append(out, domain.LineItem{
			ProductID: productID,
			Quantity:  delta,
			Snapshot:  domain.PlaceholderSnapshot(productID),
		})
	}

	return s.write("increment", out)
}

func (s *guestCartService) Remove(productID int64) error {
	items := s.Items()
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return s.write("remove", out)
}

func (s *guestCartService) Clear() error {
	if err := s.kv.Delete(localstore.KeyGuestCart); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	s.metrics.GuestCartCleared.Inc()
	s.bus.Publish(events.TopicCartUpdated)
	return nil
}

func (s *guestCartService) Enrich(ctx context.Context, productID int64) error {
	product, err := s.products.Product(ctx, productID)
	if err != nil {
		return err
	}

	items := s.Items()
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Snapshot = domain.SnapshotFromProduct(*product)
			return s.write("enrich", items)
		}
	}
	return nil
}

// write persists the cart, then counts and broadcasts the mutation.
// The broadcast happens only after the durable write succeeds.
func (s *guestCartService) write(op string, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	if err := s.kv.Put(localstore.KeyGuestCart, string(data)); err != nil {
		return fmt.Errorf("failed to persist guest cart: %w", err)
	}

	s.metrics.GuestCartMutations.WithLabelValues(op).Inc()
	s.bus.Publish(events.TopicCartUpdated)
	return nil
}
