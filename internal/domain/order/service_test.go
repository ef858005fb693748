// internal/domain/order/service_test.go
package order

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/cart"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/pricing"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/settings"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full checkout graph over one in-memory database, with
// miniredis backing the guest session carts.
type testEnv struct {
	db       *gorm.DB
	orders   *Service
	carts    *cart.Service
	catalog  *catalog.Service
	settings *settings.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:order_%s?mode=memory&cache=shared", uuid.NewString())
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
		&cart.CartItem{},
		&settings.StoreSettings{},
		&Order{},
		&OrderItem{},
		&OrderStatusHistory{},
	))

	cfg := &config.Config{
		App: config.AppConfig{Name: "Bella Luna"},
		Store: config.StoreConfig{
			Currency:              "USD",
			DeliveryFee:           500,
			FreeDeliveryThreshold: 10000,
		},
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	catalogService := catalog.NewService(db, cfg)
	cartService := cart.NewService(db, redisClient, cfg, catalogService)
	settingsService := settings.NewService(db, nil, cfg)
	require.NoError(t, settingsService.Seed())

	return &testEnv{
		db:       db,
		orders:   NewService(db, cfg, catalogService, cartService, settingsService),
		carts:    cartService,
		catalog:  catalogService,
		settings: settingsService,
	}
}

// seedVariant creates a single-axis product with one variant
func (e *testEnv) seedVariant(t *testing.T, name string, price int64, stock int) *catalog.Variant {
	t.Helper()

	size := &catalog.Attribute{
		Name:   fmt.Sprintf("size-%s", uuid.NewString()[:8]),
		Type:   catalog.AttributeTypeText,
		Values: []catalog.AttributeValue{{Value: "M", DisplayValue: "Medium"}},
	}
	require.NoError(t, e.db.Create(size).Error)

	sku := fmt.Sprintf("SKU-%s", uuid.NewString()[:8])
	product := &catalog.Product{
		SKU:        sku,
		Name:       name,
		Slug:       fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		BasePrice:  price,
		TrackStock: true,
		IsActive:   true,
		Attributes: []catalog.Attribute{*size},
	}
	require.NoError(t, e.db.Create(product).Error)

	variant := &catalog.Variant{
		ProductID:       product.ID,
		SKU:             sku + "-M",
		Stock:           stock,
		OptionsKey:      catalog.OptionsKeyFor([]uint{size.Values[0].ID}),
		IsActive:        true,
		AttributeValues: []catalog.AttributeValue{size.Values[0]},
	}
	require.NoError(t, e.db.Create(variant).Error)
	return variant
}

func (e *testEnv) fillCart(t *testing.T, userID uint, variantID uint, qty int) {
	t.Helper()
	_, err := e.carts.AddItem(&userID, "", &cart.AddItemRequest{VariantID: variantID, Quantity: qty})
	require.NoError(t, err)
}

func homeDeliveryRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		DeliveryType:    pricing.DeliveryTypeHomeDelivery,
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		DeliveryAddress: "12 Analytical St",
		DeliveryCity:    "London",
	}
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{5}$`)

func TestCreateOrder_HomeDelivery(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 2)

	placed, err := e.orders.CreateOrder(&userID, "", homeDeliveryRequest())
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, placed.OrderNumber)
	assert.Equal(t, StatusPending, placed.Status)
	assert.Equal(t, PaymentStatusPending, placed.PaymentStatus)
	assert.Equal(t, int64(8000), placed.Subtotal)
	assert.Equal(t, int64(500), placed.DeliveryFee)
	assert.Equal(t, int64(0), placed.Discount)
	assert.Equal(t, int64(8500), placed.Total)
	assert.Equal(t, "USD", placed.Currency)
	assert.Equal(t, "Ada Lovelace", placed.CustomerName)

	require.Len(t, placed.Items, 1)
	item := placed.Items[0]
	assert.Equal(t, variant.ID, item.VariantID)
	assert.Equal(t, "Luna Tee", item.ProductName)
	assert.Equal(t, "Medium", item.VariantDesc)
	assert.Equal(t, variant.SKU, item.SKU)
	assert.Equal(t, int64(4000), item.UnitPrice)
	assert.Equal(t, int64(8000), item.TotalPrice)

	require.Len(t, placed.StatusHistory, 1)
	assert.Equal(t, StatusPending, placed.StatusHistory[0].ToStatus)

	// Stock was decremented and the cart cleared
	reloaded, err := e.catalog.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.Stock)

	cartView, err := e.carts.GetCart(&userID, "")
	require.NoError(t, err)
	assert.Empty(t, cartView.Items)
}

func TestCreateOrder_FreeDeliveryOverThreshold(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 3) // 12000 clears the 10000 threshold

	placed, err := e.orders.CreateOrder(&userID, "", homeDeliveryRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(12000), placed.Subtotal)
	assert.Equal(t, int64(0), placed.DeliveryFee)
	assert.Equal(t, int64(12000), placed.Total)
}

func TestCreateOrder_StorePickupNeverChargesDelivery(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Moonlight Candle", 2500, 10)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 1) // well below the threshold

	placed, err := e.orders.CreateOrder(&userID, "", &CreateOrderRequest{
		DeliveryType: pricing.DeliveryTypeStorePickup,
		CustomerName: "Ada Lovelace",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2500), placed.Subtotal)
	assert.Equal(t, int64(0), placed.DeliveryFee)
	assert.Equal(t, int64(2500), placed.Total)
}

func TestCreateOrder_GuestCheckout(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	sessionID := "sess-guest-1"

	_, err := e.carts.AddItem(nil, sessionID, &cart.AddItemRequest{VariantID: variant.ID, Quantity: 2})
	require.NoError(t, err)

	placed, err := e.orders.CreateOrder(nil, sessionID, homeDeliveryRequest())
	require.NoError(t, err)

	assert.Nil(t, placed.UserID)
	assert.Equal(t, int64(8500), placed.Total)
	require.Len(t, placed.Items, 1)

	reloaded, err := e.catalog.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, reloaded.Stock)

	// The session cart is emptied once the order commits
	guestView, err := e.carts.GetCart(nil, sessionID)
	require.NoError(t, err)
	assert.Empty(t, guestView.Items)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	e := newTestEnv(t)
	userID := uint(1)

	_, err := e.orders.CreateOrder(&userID, "", homeDeliveryRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyCart, apperrors.As(err).Code())
}

func TestCreateOrder_HomeDeliveryRequiresAddress(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 1)

	req := homeDeliveryRequest()
	req.DeliveryAddress = ""

	_, err := e.orders.CreateOrder(&userID, "", req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 3)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 2)

	// Stock drops between add-to-cart and checkout
	require.NoError(t, e.db.Model(&catalog.Variant{}).
		Where("id = ?", variant.ID).
		Update("stock", 1).Error)

	_, err := e.orders.CreateOrder(&userID, "", homeDeliveryRequest())
	require.Error(t, err)

	stockErr, ok := apperrors.IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, variant.ID, stockErr.VariantID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	// Nothing was committed: no orders, stock untouched, cart intact
	var orderCount int64
	require.NoError(t, e.db.Model(&Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)

	reloaded, err := e.catalog.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)

	cartView, err := e.carts.GetCart(&userID, "")
	require.NoError(t, err)
	require.Len(t, cartView.Items, 1)
	assert.Equal(t, 2, cartView.Items[0].Quantity)
}

func TestCreateOrder_ContendingCheckouts(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 3)
	alice := uint(1)
	bob := uint(2)
	e.fillCart(t, alice, variant.ID, 2)
	e.fillCart(t, bob, variant.ID, 2)

	// First checkout wins the stock
	_, err := e.orders.CreateOrder(&alice, "", homeDeliveryRequest())
	require.NoError(t, err)

	// The second finds only one unit left and fails whole
	_, err = e.orders.CreateOrder(&bob, "", homeDeliveryRequest())
	require.Error(t, err)

	stockErr, ok := apperrors.IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	var orderCount int64
	require.NoError(t, e.db.Model(&Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)

	cartView, err := e.carts.GetCart(&bob, "")
	require.NoError(t, err)
	require.Len(t, cartView.Items, 1)
}

func TestCreateOrder_SnapshotSurvivesCatalogChanges(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 2)

	placed, err := e.orders.CreateOrder(&userID, "", homeDeliveryRequest())
	require.NoError(t, err)

	require.NoError(t, e.db.Model(&catalog.Product{}).
		Where("id = ?", variant.ProductID).
		Updates(map[string]interface{}{"base_price": 9900, "name": "Renamed Tee"}).Error)

	reloaded, err := e.orders.GetOrder(placed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), reloaded.Subtotal)
	assert.Equal(t, int64(8500), reloaded.Total)
	assert.Equal(t, "Luna Tee", reloaded.Items[0].ProductName)
	assert.Equal(t, int64(4000), reloaded.Items[0].UnitPrice)
}

func TestPreviewTotals_DoesNotTouchStock(t *testing.T) {
	e := newTestEnv(t)
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	userID := uint(1)
	e.fillCart(t, userID, variant.ID, 2)

	totals, err := e.orders.PreviewTotals(&userID, "", pricing.DeliveryTypeHomeDelivery)
	require.NoError(t, err)
	assert.Equal(t, int64(8500), totals.Total)

	reloaded, err := e.catalog.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.Stock)

	cartView, err := e.carts.GetCart(&userID, "")
	require.NoError(t, err)
	assert.Len(t, cartView.Items, 1)
}

func (e *testEnv) placeOrder(t *testing.T, userID uint, qty int) (*Order, *catalog.Variant) {
	t.Helper()
	variant := e.seedVariant(t, "Luna Tee", 4000, 10)
	e.fillCart(t, userID, variant.ID, qty)
	placed, err := e.orders.CreateOrder(&userID, "", homeDeliveryRequest())
	require.NoError(t, err)
	return placed, variant
}

func TestUpdateStatus_WalksTheChain(t *testing.T) {
	e := newTestEnv(t)
	placed, _ := e.placeOrder(t, 1, 1)
	staff := uint(9)

	for _, next := range []Status{StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered} {
		updated, err := e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{Status: next}, &staff)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	// creation plus four transitions
	final, err := e.orders.GetOrder(placed.ID)
	require.NoError(t, err)
	require.Len(t, final.StatusHistory, 5)
	last := final.StatusHistory[4]
	assert.Equal(t, StatusOutForDelivery, last.FromStatus)
	assert.Equal(t, StatusDelivered, last.ToStatus)
	require.NotNil(t, last.ChangedBy)
	assert.Equal(t, staff, *last.ChangedBy)
}

func TestUpdateStatus_RejectsIllegalMoves(t *testing.T) {
	e := newTestEnv(t)
	placed, _ := e.placeOrder(t, 1, 1)

	// skipping confirmed
	_, err := e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{Status: StatusPreparing}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.As(err).Code())

	for _, next := range []Status{StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered} {
		_, err := e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{Status: next}, nil)
		require.NoError(t, err)
	}

	// delivered is terminal, no walking back
	_, err = e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{Status: StatusConfirmed}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.As(err).Code())

	_, err = e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{Status: StatusCancelled}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.As(err).Code())

	_, err = e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{Status: Status("shipped")}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}

func TestUpdateStatus_ExpectedStatusGuard(t *testing.T) {
	e := newTestEnv(t)
	placed, _ := e.placeOrder(t, 1, 1)

	// A caller working from a stale read gets a conflict, not a transition
	_, err := e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{
		Status:         StatusCancelled,
		ExpectedStatus: StatusConfirmed,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())

	// With the right expectation it goes through
	updated, err := e.orders.UpdateStatus(placed.ID, &UpdateStatusRequest{
		Status:         StatusConfirmed,
		ExpectedStatus: StatusPending,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
}

func TestCancelOrder_RestocksEveryLine(t *testing.T) {
	e := newTestEnv(t)
	placed, variant := e.placeOrder(t, 1, 3)

	afterCheckout, err := e.catalog.GetVariant(variant.ID)
	require.NoError(t, err)
	require.Equal(t, 7, afterCheckout.Stock)

	staff := uint(9)
	cancelled, err := e.orders.CancelOrder(placed.ID, "customer changed their mind", &staff)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	restocked, err := e.catalog.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, restocked.Stock)

	movements, err := e.catalog.GetStockMovements(variant.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2) // the sale and the return
	assert.Equal(t, catalog.MovementTypeInbound, movements[0].MovementType)
	assert.Equal(t, catalog.ReasonRestock, movements[0].Reason)
	assert.Equal(t, 3, movements[0].Quantity)

	// Cancelling twice is rejected
	_, err = e.orders.CancelOrder(placed.ID, "", &staff)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.As(err).Code())
}

func TestMarkPaid(t *testing.T) {
	e := newTestEnv(t)
	placed, _ := e.placeOrder(t, 1, 1)

	paid, err := e.orders.MarkPaid(placed.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, paid.PaymentStatus)

	_, err = e.orders.MarkPaid(placed.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())
}

func TestGetUserOrder_EnforcesOwnership(t *testing.T) {
	e := newTestEnv(t)
	placed, _ := e.placeOrder(t, 1, 1)

	mine, err := e.orders.GetUserOrder(1, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, mine.OrderNumber)

	_, err = e.orders.GetUserOrder(2, placed.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestListOrders_FiltersByStatus(t *testing.T) {
	e := newTestEnv(t)
	first, _ := e.placeOrder(t, 1, 1)
	_, _ = e.placeOrder(t, 2, 1)

	_, err := e.orders.UpdateStatus(first.ID, &UpdateStatusRequest{Status: StatusConfirmed}, nil)
	require.NoError(t, err)

	confirmed, err := e.orders.ListOrders(&ListRequest{Page: 1, Limit: 20, Status: StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed.Orders, 1)
	assert.Equal(t, first.OrderNumber, confirmed.Orders[0].OrderNumber)

	all, err := e.orders.ListOrders(&ListRequest{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	_, err = e.orders.ListOrders(&ListRequest{Page: 1, Limit: 20, Status: Status("bogus")})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())
}
