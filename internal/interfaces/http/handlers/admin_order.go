// internal/interfaces/http/handlers/admin_order.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/cart"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/order"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/settings"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/interfaces/http/middleware"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/invoice"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AdminOrderHandler handles staff order management endpoints
type AdminOrderHandler struct {
	orderService   *order.Service
	invoiceService *invoice.Service
	config         *config.Config
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *AdminOrderHandler {
	catalogService := catalog.NewService(db, cfg)
	cartService := cart.NewService(db, redisClient, cfg, catalogService)
	settingsService := settings.NewService(db, redisClient, cfg)
	return &AdminOrderHandler{
		orderService:   order.NewService(db, cfg, catalogService, cartService, settingsService),
		invoiceService: invoice.NewService(cfg),
		config:         cfg,
	}
}

// ListOrders handles GET /admin/orders
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.ListOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": response})
}

// GetOrder handles GET /admin/orders/:id
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	orderResponse, err := h.orderService.GetOrder(uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orderResponse})
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	changedBy := middleware.GetOptionalUserID(c)
	orderResponse, err := h.orderService.UpdateStatus(uint(orderID), &req, changedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    orderResponse,
	})
}

// CancelRequest represents an order cancellation
type CancelRequest struct {
	Note string `json:"note"`
}

// CancelOrder handles PUT /admin/orders/:id/cancel
func (h *AdminOrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	changedBy := middleware.GetOptionalUserID(c)
	orderResponse, err := h.orderService.CancelOrder(uint(orderID), req.Note, changedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"data":    orderResponse,
	})
}

// MarkPaid handles PUT /admin/orders/:id/paid
func (h *AdminOrderHandler) MarkPaid(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	orderResponse, err := h.orderService.MarkPaid(uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order marked as paid",
		"data":    orderResponse,
	})
}

// DownloadInvoice handles GET /admin/orders/:id/invoice
func (h *AdminOrderHandler) DownloadInvoice(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	orderResponse, err := h.orderService.GetOrder(uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	pdfBuffer, err := h.invoiceService.Generate(orderResponse)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", orderResponse.OrderNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
