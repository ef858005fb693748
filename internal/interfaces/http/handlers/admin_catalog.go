// internal/interfaces/http/handlers/admin_catalog.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"gorm.io/gorm"
)

// AdminCatalogHandler handles staff catalog management endpoints
type AdminCatalogHandler struct {
	catalogService *catalog.Service
	config         *config.Config
}

// NewAdminCatalogHandler creates a new admin catalog handler
func NewAdminCatalogHandler(db *gorm.DB, cfg *config.Config) *AdminCatalogHandler {
	return &AdminCatalogHandler{
		catalogService: catalog.NewService(db, cfg),
		config:         cfg,
	}
}

// CreateProduct handles POST /admin/catalog/products
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req catalog.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.CreateProduct(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    product,
	})
}

// ListProducts handles GET /admin/catalog/products (includes inactive)
func (h *AdminCatalogHandler) ListProducts(c *gin.Context) {
	var req catalog.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.catalogService.GetProducts(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": response})
}

// CreateVariant handles POST /admin/catalog/products/:id/variants
func (h *AdminCatalogHandler) CreateVariant(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req catalog.VariantCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	variant, err := h.catalogService.CreateVariant(uint(productID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Variant created successfully",
		"data":    variant,
	})
}

// SetStockRequest represents an admin stock adjustment
type SetStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

// SetVariantStock handles PUT /admin/catalog/variants/:id/stock
func (h *AdminCatalogHandler) SetVariantStock(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid variant ID"})
		return
	}

	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	variant, err := h.catalogService.SetStock(uint(variantID), req.Stock)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock updated successfully",
		"data":    variant,
	})
}

// GetStockMovements handles GET /admin/catalog/variants/:id/movements
func (h *AdminCatalogHandler) GetStockMovements(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid variant ID"})
		return
	}

	movements, err := h.catalogService.GetStockMovements(uint(variantID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movements})
}

// CreateAttribute handles POST /admin/catalog/attributes
func (h *AdminCatalogHandler) CreateAttribute(c *gin.Context) {
	var req catalog.AttributeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	attribute, err := h.catalogService.CreateAttribute(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Attribute created successfully",
		"data":    attribute,
	})
}

// AddAttributeValue handles POST /admin/catalog/attributes/:id/values
func (h *AdminCatalogHandler) AddAttributeValue(c *gin.Context) {
	attributeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attribute ID"})
		return
	}

	var req catalog.AttributeValueCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	value, err := h.catalogService.AddAttributeValue(uint(attributeID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Attribute value created successfully",
		"data":    value,
	})
}

// DeleteAttribute handles DELETE /admin/catalog/attributes/:id
func (h *AdminCatalogHandler) DeleteAttribute(c *gin.Context) {
	attributeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attribute ID"})
		return
	}

	if err := h.catalogService.DeleteAttribute(uint(attributeID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attribute deleted successfully"})
}

// DeleteAttributeValue handles DELETE /admin/catalog/values/:id
func (h *AdminCatalogHandler) DeleteAttributeValue(c *gin.Context) {
	valueID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid value ID"})
		return
	}

	if err := h.catalogService.DeleteAttributeValue(uint(valueID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attribute value deleted successfully"})
}
