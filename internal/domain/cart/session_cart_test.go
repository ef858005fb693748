// internal/domain/cart/session_cart_test.go
package cart

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSessionTestService wires a cart service with a miniredis backend so
// guest session carts can be exercised for real
func newSessionTestService(t *testing.T) *Service {
	t.Helper()
	s, _ := newTestService(t)
	mr := miniredis.RunT(t)
	s.redisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return s
}

func TestSessionCart_AddUpdateRemove(t *testing.T) {
	s := newSessionTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	sessionID := "sess-guest-1"

	response, err := s.AddItem(nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, sessionID, response.SessionID)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 2, response.Items[0].Quantity)
	assert.Equal(t, int64(4000), response.Items[0].UnitPrice)
	assert.Equal(t, int64(8000), response.Totals.Subtotal)

	response, err = s.UpdateItem(nil, sessionID, variant.ID, &UpdateItemRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, response.Items[0].Quantity)

	response, err = s.RemoveItem(nil, sessionID, variant.ID)
	require.NoError(t, err)
	assert.Empty(t, response.Items)

	_, err = s.RemoveItem(nil, sessionID, variant.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestSessionCart_MergesQuantitiesAndRefreshesPrice(t *testing.T) {
	s := newSessionTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	sessionID := "sess-guest-1"

	_, err := s.AddItem(nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, s.db.Model(&catalog.Product{}).
		Where("id = ?", variant.ProductID).
		Update("base_price", 3500).Error)

	response, err := s.AddItem(nil, sessionID, &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, response.Items, 1)
	assert.Equal(t, 3, response.Items[0].Quantity)
	assert.Equal(t, int64(3500), response.Items[0].UnitPrice)
	assert.Equal(t, int64(10500), response.Totals.Subtotal)
}

func TestSessionCart_IsolatedPerSession(t *testing.T) {
	s := newSessionTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)

	_, err := s.AddItem(nil, "sess-a", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	response, err := s.GetCart(nil, "sess-b")
	require.NoError(t, err)
	assert.Empty(t, response.Items)

	require.NoError(t, s.Clear(nil, "sess-a"))
	response, err = s.GetCart(nil, "sess-a")
	require.NoError(t, err)
	assert.Empty(t, response.Items)
}

func TestSessionCart_RequiresSessionID(t *testing.T) {
	s := newSessionTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)

	_, err := s.AddItem(nil, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestMergeGuestCart(t *testing.T) {
	s := newSessionTestService(t)
	shared := seedVariant(t, s.db, 4000, 10)
	guestOnly := seedVariant(t, s.db, 2500, 10)
	userID := uint(1)
	sessionID := "sess-guest-1"

	// The user already has one of the shared variant at an old price
	_, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: shared.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = s.AddItem(nil, sessionID, &AddItemRequest{VariantID: shared.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = s.AddItem(nil, sessionID, &AddItemRequest{VariantID: guestOnly.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, s.db.Model(&catalog.Product{}).
		Where("id = ?", shared.ProductID).
		Update("base_price", 3500).Error)

	response, err := s.MergeGuestCart(userID, sessionID)
	require.NoError(t, err)
	require.Len(t, response.Items, 2)

	byVariant := make(map[uint]ItemResponse, len(response.Items))
	for _, item := range response.Items {
		byVariant[item.VariantID] = item
	}
	assert.Equal(t, 3, byVariant[shared.ID].Quantity)
	assert.Equal(t, int64(3500), byVariant[shared.ID].UnitPrice)
	assert.Equal(t, 3, byVariant[guestOnly.ID].Quantity)
	assert.Equal(t, int64(2500), byVariant[guestOnly.ID].UnitPrice)

	// The session cart is gone after the merge
	guestView, err := s.GetCart(nil, sessionID)
	require.NoError(t, err)
	assert.Empty(t, guestView.Items)
}

func TestMergeGuestCart_SkipsVanishedVariants(t *testing.T) {
	s := newSessionTestService(t)
	kept := seedVariant(t, s.db, 4000, 10)
	doomed := seedVariant(t, s.db, 2500, 10)
	userID := uint(1)
	sessionID := "sess-guest-1"

	_, err := s.AddItem(nil, sessionID, &AddItemRequest{VariantID: kept.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = s.AddItem(nil, sessionID, &AddItemRequest{VariantID: doomed.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, s.db.Delete(&catalog.Variant{}, doomed.ID).Error)

	response, err := s.MergeGuestCart(userID, sessionID)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, kept.ID, response.Items[0].VariantID)
}

func TestMergeGuestCart_NoSession(t *testing.T) {
	s := newSessionTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	userID := uint(1)

	_, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	// Nothing to merge; the user cart comes back untouched
	response, err := s.MergeGuestCart(userID, "")
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, 1, response.Items[0].Quantity)
}
