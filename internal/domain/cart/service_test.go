// internal/domain/cart/service_test.go
package cart

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService wires a cart service over a fresh in-memory database with
// no Redis client; these tests cover the database-backed user carts. The
// session-cart tests swap in a miniredis-backed client.
func newTestService(t *testing.T) (*Service, *catalog.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Attribute{},
		&catalog.AttributeValue{},
		&catalog.Product{},
		&catalog.Variant{},
		&catalog.StockMovement{},
		&CartItem{},
	))

	cfg := &config.Config{}
	catalogService := catalog.NewService(db, cfg)
	return NewService(db, nil, cfg, catalogService), catalogService
}

// seedVariant creates a single-axis product with one variant
func seedVariant(t *testing.T, db *gorm.DB, price int64, stock int) *catalog.Variant {
	t.Helper()

	size := &catalog.Attribute{
		Name:   fmt.Sprintf("size-%s", uuid.NewString()[:8]),
		Type:   catalog.AttributeTypeText,
		Values: []catalog.AttributeValue{{Value: "M"}},
	}
	require.NoError(t, db.Create(size).Error)

	product := &catalog.Product{
		SKU:        fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Name:       "Test Product",
		Slug:       fmt.Sprintf("test-%s", uuid.NewString()[:8]),
		BasePrice:  price,
		TrackStock: true,
		IsActive:   true,
		Attributes: []catalog.Attribute{*size},
	}
	require.NoError(t, db.Create(product).Error)

	variant := &catalog.Variant{
		ProductID:       product.ID,
		SKU:             product.SKU + "-M",
		Stock:           stock,
		OptionsKey:      catalog.OptionsKeyFor([]uint{size.Values[0].ID}),
		IsActive:        true,
		AttributeValues: []catalog.AttributeValue{size.Values[0]},
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestAddItem_SnapshotsPrice(t *testing.T) {
	s, _ := newTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	userID := uint(1)

	response, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, response.Items, 1)
	assert.Equal(t, 2, response.Items[0].Quantity)
	assert.Equal(t, int64(4000), response.Items[0].UnitPrice)
	assert.Equal(t, int64(8000), response.Totals.Subtotal)
	assert.Equal(t, 2, response.Totals.ItemCount)
}

func TestAddItem_MergesQuantitiesAndRefreshesPrice(t *testing.T) {
	s, _ := newTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	userID := uint(1)

	_, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	// Price drops between the two adds
	require.NoError(t, s.db.Model(&catalog.Product{}).
		Where("id = ?", variant.ProductID).
		Update("base_price", 3500).Error)

	response, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, response.Items, 1)
	assert.Equal(t, 3, response.Items[0].Quantity)
	assert.Equal(t, int64(3500), response.Items[0].UnitPrice)
	assert.Equal(t, int64(10500), response.Totals.Subtotal)
}

func TestAddItem_ResolvesSelection(t *testing.T) {
	s, _ := newTestService(t)
	variant := seedVariant(t, s.db, 2000, 5)
	userID := uint(2)

	response, err := s.AddItem(&userID, "", &AddItemRequest{
		ProductID:         variant.ProductID,
		AttributeValueIDs: []uint{variant.AttributeValues[0].ID},
		Quantity:          1,
	})
	require.NoError(t, err)

	require.Len(t, response.Items, 1)
	assert.Equal(t, variant.ID, response.Items[0].VariantID)
}

func TestAddItem_AdvisoryStockCheck(t *testing.T) {
	s, _ := newTestService(t)
	variant := seedVariant(t, s.db, 4000, 3)
	userID := uint(1)

	_, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	// Merged quantity would exceed stock
	_, err = s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOutOfStock, apperrors.As(err).Code())
}

func TestUpdateItem(t *testing.T) {
	s, _ := newTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	userID := uint(1)

	_, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	response, err := s.UpdateItem(&userID, "", variant.ID, &UpdateItemRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, response.Items[0].Quantity)

	// Zero quantity is not an update, removal is its own operation
	_, err = s.UpdateItem(&userID, "", variant.ID, &UpdateItemRequest{Quantity: 0})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())

	_, err = s.UpdateItem(&userID, "", 99999, &UpdateItemRequest{Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestRemoveItemAndClear(t *testing.T) {
	s, _ := newTestService(t)
	first := seedVariant(t, s.db, 4000, 10)
	second := seedVariant(t, s.db, 2500, 10)
	userID := uint(1)

	_, err := s.AddItem(&userID, "", &AddItemRequest{VariantID: first.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = s.AddItem(&userID, "", &AddItemRequest{VariantID: second.ID, Quantity: 2})
	require.NoError(t, err)

	response, err := s.RemoveItem(&userID, "", first.ID)
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
	assert.Equal(t, second.ID, response.Items[0].VariantID)
	assert.Equal(t, int64(5000), response.Totals.Subtotal)

	_, err = s.RemoveItem(&userID, "", first.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())

	require.NoError(t, s.Clear(&userID, ""))
	response, err = s.GetCart(&userID, "")
	require.NoError(t, err)
	assert.Empty(t, response.Items)
	assert.Equal(t, int64(0), response.Totals.Subtotal)
}

func TestGetCart_KeepsUsersSeparate(t *testing.T) {
	s, _ := newTestService(t)
	variant := seedVariant(t, s.db, 4000, 10)
	alice := uint(1)
	bob := uint(2)

	_, err := s.AddItem(&alice, "", &AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	response, err := s.GetCart(&bob, "")
	require.NoError(t, err)
	assert.Empty(t, response.Items)
}
