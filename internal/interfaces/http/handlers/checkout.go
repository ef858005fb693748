// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/cart"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/order"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/pricing"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/settings"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/user"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	orderService *order.Service
	userService  *user.Service
	config       *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CheckoutHandler {
	catalogService := catalog.NewService(db, cfg)
	cartService := cart.NewService(db, redisClient, cfg, catalogService)
	settingsService := settings.NewService(db, redisClient, cfg)
	return &CheckoutHandler{
		orderService: order.NewService(db, cfg, catalogService, cartService, settingsService),
		userService:  user.NewService(db, cfg),
		config:       cfg,
	}
}

// PreviewRequest represents a totals preview request
type PreviewRequest struct {
	DeliveryType pricing.DeliveryType `json:"delivery_type" binding:"required"`
}

// Preview handles POST /checkout/preview
func (h *CheckoutHandler) Preview(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	totals, err := h.orderService.PreviewTotals(userID, sessionID, req.DeliveryType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

// PlaceOrderRequest wraps the order request with an optional saved address
type PlaceOrderRequest struct {
	order.CreateOrderRequest
	AddressID *uint `json:"address_id"`
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID := middleware.GetOptionalUserID(c)
	sessionID := getOrCreateSessionID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Saved addresses are a signed-in convenience; the order itself only
	// ever stores the snapshot
	if req.AddressID != nil && userID != nil {
		address, err := h.userService.GetAddress(*userID, *req.AddressID)
		if err != nil {
			respondError(c, err)
			return
		}
		req.DeliveryAddress = address.FullAddress()
		req.DeliveryCity = address.City
		if req.CustomerPhone == "" {
			req.CustomerPhone = address.Phone
		}
		if req.DeliveryNotes == "" {
			req.DeliveryNotes = address.Notes
		}
	}

	placedOrder, err := h.orderService.CreateOrder(userID, sessionID, &req.CreateOrderRequest)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placedOrder,
	})
}
