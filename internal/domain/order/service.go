// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/cart"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/pricing"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/settings"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxOrderNumberAttempts = 5

// Service handles order fulfillment and status management
type Service struct {
	db       *gorm.DB
	config   *config.Config
	catalog  *catalog.Service
	carts    *cart.Service
	settings *settings.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, catalogService *catalog.Service, cartService *cart.Service, settingsService *settings.Service) *Service {
	return &Service{
		db:       db,
		config:   cfg,
		catalog:  catalogService,
		carts:    cartService,
		settings: settingsService,
	}
}

// CreateOrderRequest represents checkout data. Address fields are the
// snapshot values; for signed-in customers the handler resolves a saved
// address into them before calling the service.
type CreateOrderRequest struct {
	DeliveryType    pricing.DeliveryType `json:"delivery_type" binding:"required"`
	CustomerName    string               `json:"customer_name" binding:"required"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerPhone   string               `json:"customer_phone"`
	DeliveryAddress string               `json:"delivery_address"`
	DeliveryCity    string               `json:"delivery_city"`
	DeliveryNotes   string               `json:"delivery_notes"`
	Notes           string               `json:"notes"`
}

// UpdateStatusRequest represents a status transition. ExpectedStatus, when
// set, guards against concurrent staff updates: the transition only applies
// if the order is still in the state the caller last read.
type UpdateStatusRequest struct {
	Status         Status `json:"status" binding:"required"`
	ExpectedStatus Status `json:"expected_status"`
	Note           string `json:"note"`
}

// ListRequest represents admin order list query parameters
type ListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Status   Status `form:"status"`
	UserID   uint   `form:"user_id"`
	DateFrom string `form:"date_from"` // YYYY-MM-DD
	DateTo   string `form:"date_to"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ListResponse represents orders with pagination
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// CreateOrder turns the current cart into an order. Everything happens in
// one transaction: the authoritative stock re-check and decrement for every
// line, the order and line-item snapshots, the status history, and the cart
// clear. Any failure rolls the whole thing back and the cart is untouched.
func (s *Service) CreateOrder(userID *uint, sessionID string, req *CreateOrderRequest) (*Order, error) {
	if !req.DeliveryType.Valid() {
		return nil, apperrors.Newf(apperrors.CodeValidation, "invalid delivery type '%s'", req.DeliveryType)
	}
	if req.DeliveryType == pricing.DeliveryTypeHomeDelivery && req.DeliveryAddress == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "delivery address is required for home delivery")
	}

	cartView, err := s.carts.GetCart(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cartView.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeEmptyCart, "cannot place an order with an empty cart")
	}

	pricingSettings, err := s.settings.PricingSettings()
	if err != nil {
		return nil, err
	}
	storeSettings, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	lineItems := make([]pricing.LineItem, len(cartView.Items))
	for i, item := range cartView.Items {
		lineItems[i] = pricing.LineItem{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}
	totals := pricing.ComputeTotals(lineItems, req.DeliveryType, pricingSettings)

	var created *Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		orderNumber, err := s.reserveOrderNumber(tx)
		if err != nil {
			return err
		}

		newOrder := &Order{
			OrderNumber:     orderNumber,
			UserID:          userID,
			Status:          StatusPending,
			PaymentStatus:   PaymentStatusPending,
			DeliveryType:    req.DeliveryType,
			Subtotal:        totals.Subtotal,
			DeliveryFee:     totals.DeliveryFee,
			Discount:        totals.Discount,
			Total:           totals.Total,
			Currency:        storeSettings.Currency,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryCity:    req.DeliveryCity,
			DeliveryNotes:   req.DeliveryNotes,
			Notes:           req.Notes,
		}
		if err := tx.Create(newOrder).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range cartView.Items {
			if err := s.catalog.DecrementStock(tx, item.VariantID, item.Quantity, "order", newOrder.ID); err != nil {
				return err
			}

			orderItem := &OrderItem{
				OrderID:     newOrder.ID,
				VariantID:   item.VariantID,
				ProductID:   item.ProductID,
				ProductName: itemProductName(item),
				VariantDesc: itemVariantDesc(item),
				SKU:         itemSKU(item),
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
				TotalPrice:  item.UnitPrice * int64(item.Quantity),
			}
			if err := tx.Create(orderItem).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		history := &OrderStatusHistory{
			OrderID:  newOrder.ID,
			ToStatus: StatusPending,
			Note:     "order placed",
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if userID != nil {
			if err := s.carts.ClearUserCartTx(tx, *userID); err != nil {
				return err
			}
		}

		created = newOrder
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Guest carts live in Redis, outside the transaction. The order is
	// already committed, so a failed delete only leaves a stale cart behind.
	if userID == nil {
		if err := s.carts.ClearSessionCart(sessionID); err != nil {
			logrus.WithError(err).
				WithField("order_number", created.OrderNumber).
				Warn("guest cart not cleared after checkout")
		}
	}

	return s.GetOrder(created.ID)
}

// PreviewTotals runs the pricing engine against the live cart without
// touching stock or creating anything
func (s *Service) PreviewTotals(userID *uint, sessionID string, deliveryType pricing.DeliveryType) (*pricing.Totals, error) {
	if !deliveryType.Valid() {
		return nil, apperrors.Newf(apperrors.CodeValidation, "invalid delivery type '%s'", deliveryType)
	}

	cartView, err := s.carts.GetCart(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cartView.Items) == 0 {
		return nil, apperrors.New(apperrors.CodeEmptyCart, "cart is empty")
	}

	pricingSettings, err := s.settings.PricingSettings()
	if err != nil {
		return nil, err
	}

	lineItems := make([]pricing.LineItem, len(cartView.Items))
	for i, item := range cartView.Items {
		lineItems[i] = pricing.LineItem{UnitPrice: item.UnitPrice, Quantity: item.Quantity}
	}
	totals := pricing.ComputeTotals(lineItems, deliveryType, pricingSettings)
	return &totals, nil
}

// GetOrder retrieves an order with items and history
func (s *Service) GetOrder(id uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "order %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrderByNumber retrieves an order by its human-readable number
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("order_number = ?", orderNumber).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "order '%s' not found", orderNumber)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetUserOrder retrieves an order only if it belongs to the given user
func (s *Service) GetUserOrder(userID, orderID uint) (*Order, error) {
	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "order %d not found", orderID)
	}
	return o, nil
}

// ListOrders retrieves orders with filtering and pagination
func (s *Service) ListOrders(req *ListRequest) (*ListResponse, error) {
	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Preload("Items")

	if req.Status != "" {
		if !ValidStatus(req.Status) {
			return nil, apperrors.Newf(apperrors.CodeValidation, "invalid status '%s'", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "date_from must be YYYY-MM-DD")
		}
		query = query.Where("created_at >= ?", from)
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "date_to must be YYYY-MM-DD")
		}
		query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetUserOrders retrieves a customer's own orders, newest first
func (s *Service) GetUserOrders(userID uint, page, limit int) (*ListResponse, error) {
	return s.ListOrders(&ListRequest{Page: page, Limit: limit, UserID: userID})
}

// UpdateStatus applies a status transition. The transition table rejects
// anything but the next legal step, terminal states reject everything, and
// the conditional update makes the change safe against concurrent staff
// working from a stale read. Cancelling restocks every line in the same
// transaction.
func (s *Service) UpdateStatus(orderID uint, req *UpdateStatusRequest, changedBy *uint) (*Order, error) {
	if !ValidStatus(req.Status) {
		return nil, apperrors.Newf(apperrors.CodeValidation, "invalid status '%s'", req.Status)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current Order
		if err := tx.Preload("Items").First(&current, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Newf(apperrors.CodeNotFound, "order %d not found", orderID)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		if req.ExpectedStatus != "" && current.Status != req.ExpectedStatus {
			return apperrors.Newf(apperrors.CodeConflict,
				"order %s is %s, not %s", current.OrderNumber, current.Status, req.ExpectedStatus)
		}

		if !CanTransition(current.Status, req.Status) {
			return apperrors.Newf(apperrors.CodeInvalidTransition,
				"cannot move order %s from %s to %s", current.OrderNumber, current.Status, req.Status)
		}

		result := tx.Model(&Order{}).
			Where("id = ? AND status = ?", orderID, current.Status).
			Update("status", req.Status)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.Newf(apperrors.CodeConflict,
				"order %s was updated concurrently", current.OrderNumber)
		}

		if req.Status == StatusCancelled {
			for _, item := range current.Items {
				if err := s.catalog.Restock(tx, item.VariantID, item.Quantity, catalog.ReasonRestock, "order", current.ID); err != nil {
					return err
				}
			}
		}

		history := &OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: current.Status,
			ToStatus:   req.Status,
			Note:       req.Note,
			ChangedBy:  changedBy,
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(orderID)
}

// CancelOrder cancels an order from any non-terminal state and returns its
// stock
func (s *Service) CancelOrder(orderID uint, note string, changedBy *uint) (*Order, error) {
	return s.UpdateStatus(orderID, &UpdateStatusRequest{Status: StatusCancelled, Note: note}, changedBy)
}

// MarkPaid flips the payment flag once money arrives
func (s *Service) MarkPaid(orderID uint) (*Order, error) {
	result := s.db.Model(&Order{}).
		Where("id = ? AND payment_status = ?", orderID, PaymentStatusPending).
		Update("payment_status", PaymentStatusPaid)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		o, err := s.GetOrder(orderID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.Newf(apperrors.CodeConflict, "order %s is already %s", o.OrderNumber, o.PaymentStatus)
	}
	return s.GetOrder(orderID)
}

// reserveOrderNumber generates a unique human-readable order number. The
// uniqueness check runs inside the caller's transaction with a unique index
// as the backstop; after a handful of collisions we give up rather than
// loop forever.
func (s *Service) reserveOrderNumber(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		candidate := generateOrderNumber()

		var count int64
		if err := tx.Model(&Order{}).Where("order_number = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check order number: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", apperrors.New(apperrors.CodeOrderNumberCollision,
		"could not generate a unique order number")
}

// generateOrderNumber builds ORD-YYYYMMDD-XXXXX with random entropy
func generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.New().String()[:5])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// snapshot helpers, tolerant of catalog rows that disappeared between
// cart load and checkout

func itemProductName(item cart.ItemResponse) string {
	if item.Product != nil {
		return item.Product.Name
	}
	return fmt.Sprintf("product %d", item.ProductID)
}

func itemSKU(item cart.ItemResponse) string {
	if item.Variant != nil && item.Variant.SKU != "" {
		return item.Variant.SKU
	}
	if item.Product != nil {
		return item.Product.SKU
	}
	return ""
}

func itemVariantDesc(item cart.ItemResponse) string {
	if item.Variant == nil || len(item.Variant.AttributeValues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(item.Variant.AttributeValues))
	for _, value := range item.Variant.AttributeValues {
		label := value.DisplayValue
		if label == "" {
			label = value.Value
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " / ")
}
