package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmill/storefront/internal/domain"
)

func newMergeFixture(t *testing.T, cartAPI *mockCartAPI) (MergeService, GuestCartService, testDeps) {
	t.Helper()

	deps := newTestDeps(t)
	guest := NewGuestCartService(deps.kv, &mockProducts{}, deps.bus, deps.metrics, deps.logger)
	session := authedSession(t, deps, "token-1")
	merge := NewMergeService(guest, session, cartAPI, deps.metrics, deps.logger)
	return merge, guest, deps
}

func TestMerge_HappyPathDrainsAndClears(t *testing.T) {
	cartAPI := &mockCartAPI{}
	merge, guest, _ := newMergeFixture(t, cartAPI)

	require.NoError(t, guest.Add(domain.LineItem{ProductID: 1, Quantity: 2, Snapshot: domain.Snapshot{ID: 1, Name: "A"}}))
	require.NoError(t, guest.Add(domain.LineItem{ProductID: 2, Quantity: 1, Snapshot: domain.Snapshot{ID: 2, Name: "B"}}))

	merged, err := merge.Merge(context.Background())
	require.NoError(t, err)
	assert.True(t, merged)

	require.Len(t, cartAPI.addCalls, 2, "one sequential add per line item")
	assert.Equal(t, addCall{productID: 1, quantity: 2}, cartAPI.addCalls[0])
	assert.Equal(t, addCall{productID: 2, quantity: 1}, cartAPI.addCalls[1])

	assert.Empty(t, guest.Items(), "guest cart cleared after full success")
}

func TestMerge_EmptyCartIsNoop(t *testing.T) {
	cartAPI := &mockCartAPI{}
	merge, _, _ := newMergeFixture(t, cartAPI)

	merged, err := merge.Merge(context.Background())
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Empty(t, cartAPI.addCalls, "no API calls for an empty guest cart")
}

func TestMerge_MidLoopFailureKeepsOnlyUnmergedTail(t *testing.T) {
	cartAPI := &mockCartAPI{}
	cartAPI.addFunc = func(ctx context.Context, token string, productID, quantity int64) error {
		if len(cartAPI.addCalls) == 2 {
			return &domain.Error{Code: domain.EUNAVAILABLE, Message: "storage down"}
		}
		return nil
	}
	merge, guest, _ := newMergeFixture(t, cartAPI)

	for id := int64(1); id <= 4; id++ {
		require.NoError(t, guest.Add(domain.LineItem{ProductID: id, Quantity: id, Snapshot: domain.Snapshot{ID: id, Name: "P"}}))
	}

	merged, err := merge.Merge(context.Background())
	require.Error(t, err)
	assert.False(t, merged)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	assert.Len(t, cartAPI.addCalls, 2, "merge stops at the first failure")

	// Lines 1 and 2 landed server-side and were dropped locally;
	// lines 3 and 4 stay for the next attempt.
	remaining := guest.Items()
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(3), remaining[0].ProductID)
	assert.Equal(t, int64(4), remaining[1].ProductID)
}

func TestMerge_RetryAfterFailureSubmitsOnlyTail(t *testing.T) {
	cartAPI := &mockCartAPI{}
	failOnce := true
	cartAPI.addFunc = func(ctx context.Context, token string, productID, quantity int64) error {
		if failOnce && productID == 2 {
			failOnce = false
			return &domain.Error{Code: domain.EUNAVAILABLE, Message: "blip"}
		}
		return nil
	}
	merge, guest, _ := newMergeFixture(t, cartAPI)

	require.NoError(t, guest.Add(domain.LineItem{ProductID: 1, Quantity: 1, Snapshot: domain.Snapshot{ID: 1, Name: "A"}}))
	require.NoError(t, guest.Add(domain.LineItem{ProductID: 2, Quantity: 1, Snapshot: domain.Snapshot{ID: 2, Name: "B"}}))

	_, err := merge.Merge(context.Background())
	require.Error(t, err)

	merged, err := merge.Merge(context.Background())
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Empty(t, guest.Items())

	// Product 1 was submitted exactly once across both runs.
	submissions := 0
	for _, call := range cartAPI.addCalls {
		if call.productID == 1 {
			submissions++
		}
	}
	assert.Equal(t, 1, submissions, "retry never re-submits already-merged lines")
}

func TestMerge_RequiresAuthentication(t *testing.T) {
	deps := newTestDeps(t)
	guest := NewGuestCartService(deps.kv, &mockProducts{}, deps.bus, deps.metrics, deps.logger)
	session := NewSession(deps.kv, &mockAuthAPI{}, deps.metrics, deps.logger)
	cartAPI := &mockCartAPI{}
	merge := NewMergeService(guest, session, cartAPI, deps.metrics, deps.logger)

	require.NoError(t, guest.Add(domain.LineItem{ProductID: 1, Quantity: 1, Snapshot: domain.Snapshot{ID: 1, Name: "A"}}))

	merged, err := merge.Merge(context.Background())
	require.Error(t, err)
	assert.False(t, merged)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
	assert.Empty(t, cartAPI.addCalls)
	assert.Len(t, guest.Items(), 1, "guest cart untouched without a session")
}
