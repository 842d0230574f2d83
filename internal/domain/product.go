package domain

// Product is the backend's product record as rendered by the client.
type Product struct {
	ID         int64   `json:"id"`
	Slug       string  `json:"slug,omitempty"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	PriceLabel string  `json:"priceLabel,omitempty"`
	ImageURL   string  `json:"imageUrl,omitempty"`
}

// SnapshotFromProduct denormalizes a product record into the display
// fragment carried on guest cart lines.
func SnapshotFromProduct(p Product) Snapshot {
	return Snapshot{
		ID:         p.ID,
		Slug:       p.Slug,
		Name:       p.Name,
		Price:      p.Price,
		PriceLabel: p.PriceLabel,
		ImageURL:   p.ImageURL,
	}
}

// CartItem is a server-authoritative cart line, valid only for the
// request that fetched it. Pages re-fetch rather than cache.
type CartItem struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}
