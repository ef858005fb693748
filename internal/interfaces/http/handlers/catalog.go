// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"gorm.io/gorm"
)

// CatalogHandler handles the public storefront catalog endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
	config         *config.Config
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalog.NewService(db, cfg),
		config:         cfg,
	}
}

// GetProducts handles GET /catalog/products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var req catalog.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	// Shoppers only ever see the active catalog
	active := true
	req.IsActive = &active

	response, err := h.catalogService.GetProducts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": response})
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProduct(uint(productID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GetProductBySlug handles GET /catalog/products/slug/:slug
func (h *CatalogHandler) GetProductBySlug(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// GetAttributes handles GET /catalog/attributes
func (h *CatalogHandler) GetAttributes(c *gin.Context) {
	attributes, err := h.catalogService.GetAttributes()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attributes})
}

// ResolveVariantRequest represents a variant resolution request
type ResolveVariantRequest struct {
	AttributeValueIDs []uint `json:"attribute_value_ids"`
	Quantity          int    `json:"quantity"`
}

// ResolveVariant handles POST /catalog/products/:id/resolve. It maps an
// attribute-value selection to the concrete variant and reports its price
// and advisory availability.
func (h *CatalogHandler) ResolveVariant(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req ResolveVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	variant, err := h.catalogService.ResolveVariant(uint(productID), req.AttributeValueIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"variant":    variant,
			"unit_price": variant.UnitPrice(variant.Product),
			"available":  variant.InStock(variant.Product, quantity),
		},
	})
}
