package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

// Snapshot is a denormalized product display fragment carried on a
// guest cart line so the cart renders without a product fetch. It is
// not authoritative and may go stale relative to the backend.
type Snapshot struct {
	ID         int64   `json:"id"`
	Slug       string  `json:"slug,omitempty"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	PriceLabel string  `json:"priceLabel,omitempty"`
	ImageURL   string  `json:"imageUrl,omitempty"`
}

// LineItem is one guest cart entry. Product IDs are unique within a
// cart and quantities are strictly positive; anything else is dropped
// during decoding or removed on mutation.
type LineItem struct {
	ProductID int64    `json:"productId"`
	Quantity  int64    `json:"quantity"`
	Snapshot  Snapshot `json:"snapshot"`
}

// PlaceholderSnapshot is used when an item enters the cart through a
// bare quantity adjustment and no product data is on hand. Callers are
// expected to enrich it later.
func PlaceholderSnapshot(productID int64) Snapshot {
	return Snapshot{ID: productID, Name: "Product", Price: 0}
}

// MergeSnapshot overlays next onto prev, field by field. Non-zero
// fields of next win; zero fields keep the previous value.
func MergeSnapshot(prev, next Snapshot) Snapshot {
	out := prev
	if next.ID != 0 {
		out.ID = next.ID
	}
	if next.Slug != "" {
		out.Slug = next.Slug
	}
	if next.Name != "" {
		out.Name = next.Name
	}
	if next.Price != 0 {
		out.Price = next.Price
	}
	if next.PriceLabel != "" {
		out.PriceLabel = next.PriceLabel
	}
	if next.ImageURL != "" {
		out.ImageURL = next.ImageURL
	}
	return out
}

// DecodeLineItems parses a stored guest cart. The stored form is
// untrusted: it may be corrupt JSON, a non-array, or contain entries
// with string ids, fractional quantities, or missing snapshots. Bad
// entries are coerced where possible and dropped otherwise; duplicate
// product ids are collapsed by summing quantities. Never errors - a
// hopeless payload decodes to an empty cart.
func DecodeLineItems(data []byte) []LineItem {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	items := make([]LineItem, 0, len(raw))
	index := make(map[int64]int)

	for _, entry := range raw {
		id, ok := coerceID(entry["productId"])
		if !ok || id <= 0 {
			continue
		}
		qty, ok := coerceID(entry["quantity"])
		if !ok || qty <= 0 {
			continue
		}

		snap := PlaceholderSnapshot(id)
		if rawSnap, present := entry["snapshot"]; present {
			var s Snapshot
			if err := json.Unmarshal(rawSnap, &s); err == nil {
				snap = MergeSnapshot(snap, s)
			}
		}
		snap.ID = id

		if i, seen := index[id]; seen {
			items[i].Quantity += qty
			items[i].Snapshot = MergeSnapshot(items[i].Snapshot, snap)
			continue
		}

		index[id] = len(items)
		items = append(items, LineItem{ProductID: id, Quantity: qty, Snapshot: snap})
	}

	return items
}

// NormalizeLineItems applies the guest cart invariant to an in-memory
// list: unique product ids, strictly positive quantities, order of
// first appearance preserved. Duplicate entries sum their quantities.
func NormalizeLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[int64]int)

	for _, item := range items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			continue
		}
		if i, seen := index[item.ProductID]; seen {
			out[i].Quantity += item.Quantity
			out[i].Snapshot = MergeSnapshot(out[i].Snapshot, item.Snapshot)
			continue
		}
		item.Snapshot.ID = item.ProductID
		index[item.ProductID] = len(out)
		out = append(out, item)
	}

	return out
}

// coerceID accepts the numeric shapes a stored cart or a profile
// payload may carry: JSON numbers (including fractional) and numeric
// strings. Non-finite values are rejected.
func coerceID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(math.Floor(n)), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int64(math.Floor(f)), true
	}

	return 0, false
}
