package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLineItems_CorruptPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "not json"},
		{name: "empty", data: ""},
		{name: "object instead of array", data: `{"productId":1}`},
		{name: "number", data: "42"},
		{name: "null", data: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, DecodeLineItems([]byte(tt.data)))
		})
	}
}

func TestDecodeLineItems_DropsInvalidEntries(t *testing.T) {
	data := `[
		{"productId": 1, "quantity": 2, "snapshot": {"id": 1, "name": "A", "price": 10}},
		{"productId": 0, "quantity": 5},
		{"productId": -3, "quantity": 1},
		{"quantity": 4},
		{"productId": 7, "quantity": 0},
		{"productId": 8, "quantity": -2},
		{"productId": "nope", "quantity": 1},
		{"productId": 9, "quantity": "three"}
	]`

	items := DecodeLineItems([]byte(data))
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, "A", items[0].Snapshot.Name)
}

func TestDecodeLineItems_CoercesStringIDs(t *testing.T) {
	data := `[{"productId": "5", "quantity": "2"}]`

	items := DecodeLineItems([]byte(data))
	assert.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].ProductID)
	assert.Equal(t, int64(2), items[0].Quantity)
	// Missing snapshot falls back to the placeholder.
	assert.Equal(t, "Product", items[0].Snapshot.Name)
	assert.Equal(t, int64(5), items[0].Snapshot.ID)
}

func TestDecodeLineItems_CollapsesDuplicates(t *testing.T) {
	data := `[
		{"productId": 5, "quantity": 2, "snapshot": {"id": 5, "name": "A"}},
		{"productId": 5, "quantity": 3, "snapshot": {"id": 5, "name": "A", "imageUrl": "/a.png"}}
	]`

	items := DecodeLineItems([]byte(data))
	assert.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Quantity)
	assert.Equal(t, "/a.png", items[0].Snapshot.ImageURL)
}

func TestNormalizeLineItems(t *testing.T) {
	in := []LineItem{
		{ProductID: 1, Quantity: 1, Snapshot: Snapshot{Name: "A"}},
		{ProductID: 2, Quantity: 0},
		{ProductID: 1, Quantity: 4, Snapshot: Snapshot{Price: 9.5}},
		{ProductID: -1, Quantity: 3},
	}

	out := NormalizeLineItems(in)
	assert.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ProductID)
	assert.Equal(t, int64(5), out[0].Quantity)
	assert.Equal(t, "A", out[0].Snapshot.Name)
	assert.Equal(t, 9.5, out[0].Snapshot.Price)
	assert.Equal(t, int64(1), out[0].Snapshot.ID)
}

func TestMergeSnapshot_NewFieldsWin(t *testing.T) {
	prev := Snapshot{ID: 1, Name: "Old", Price: 5, ImageURL: "/old.png"}
	next := Snapshot{ID: 1, Name: "New", PriceLabel: "$6.00"}

	got := MergeSnapshot(prev, next)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, 5.0, got.Price, "zero price in next keeps previous")
	assert.Equal(t, "/old.png", got.ImageURL)
	assert.Equal(t, "$6.00", got.PriceLabel)
}
