// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	IsActive   *bool  `form:"is_active"`
	IsFeatured *bool  `form:"is_featured"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	SKU             string `json:"sku" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Slug            string `json:"slug" binding:"required"`
	Description     string `json:"description"`
	BaseCost        int64  `json:"base_cost"`
	BasePrice       int64  `json:"base_price" binding:"required"`
	DiscountPercent int    `json:"discount_percent"`
	TrackStock      *bool  `json:"track_stock"`
	IsActive        bool   `json:"is_active"`
	IsFeatured      bool   `json:"is_featured"`
	CategoryIDs     []uint `json:"category_ids"`
	AttributeIDs    []uint `json:"attribute_ids"`
}

// VariantCreateRequest represents variant creation data
type VariantCreateRequest struct {
	SKU               string `json:"sku"`
	Price             *int64 `json:"price"`
	Stock             int    `json:"stock"`
	AttributeValueIDs []uint `json:"attribute_value_ids"`
}

// AttributeCreateRequest represents attribute creation data
type AttributeCreateRequest struct {
	Name        string        `json:"name" binding:"required"`
	DisplayName string        `json:"display_name"`
	Type        AttributeType `json:"type"`
	SortOrder   int           `json:"sort_order"`
}

// AttributeValueCreateRequest represents attribute value creation data
type AttributeValueCreateRequest struct {
	Value        string `json:"value" binding:"required"`
	DisplayValue string `json:"display_value"`
	ColorHex     string `json:"color_hex"`
	SortOrder    int    `json:"sort_order"`
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

// ProductListResponse represents products with pagination
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// PRODUCTS

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Categories").
		Preload("Attributes.Values").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true)
		})

	if req.CategoryID > 0 {
		query = query.Joins("JOIN product_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	if req.IsFeatured != nil {
		query = query.Where("is_featured = ?", *req.IsFeatured)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
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

// GetProduct retrieves a single product with its variation data
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	err := s.db.Preload("Categories").
		Preload("Attributes.Values").
		Preload("Variants.AttributeValues").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProductBySlug retrieves a single product by its URL slug
func (s *Service) GetProductBySlug(slug string) (*Product, error) {
	var product Product
	err := s.db.Preload("Categories").
		Preload("Attributes.Values").
		Preload("Variants.AttributeValues").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "product '%s' not found", slug)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// CreateProduct creates a product with its categories and variation axes
func (s *Service) CreateProduct(req *ProductCreateRequest) (*Product, error) {
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, apperrors.New(apperrors.CodeValidation, "discount_percent must be between 0 and 100")
	}
	if req.BasePrice < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "base_price cannot be negative")
	}

	var existing Product
	if err := s.db.Where("sku = ? OR slug = ?", req.SKU, req.Slug).First(&existing).Error; err == nil {
		return nil, apperrors.Newf(apperrors.CodeConflict, "product with sku '%s' or slug '%s' already exists", req.SKU, req.Slug)
	}

	trackStock := true
	if req.TrackStock != nil {
		trackStock = *req.TrackStock
	}

	product := &Product{
		SKU:             req.SKU,
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		BaseCost:        req.BaseCost,
		BasePrice:       req.BasePrice,
		DiscountPercent: req.DiscountPercent,
		TrackStock:      trackStock,
		IsActive:        req.IsActive,
		IsFeatured:      req.IsFeatured,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		if len(req.CategoryIDs) > 0 {
			var categories []Category
			if err := tx.Where("id IN ?", req.CategoryIDs).Find(&categories).Error; err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			if err := tx.Model(product).Association("Categories").Append(categories); err != nil {
				return fmt.Errorf("failed to attach categories: %w", err)
			}
		}
		if len(req.AttributeIDs) > 0 {
			var attributes []Attribute
			if err := tx.Where("id IN ?", req.AttributeIDs).Find(&attributes).Error; err != nil {
				return fmt.Errorf("failed to load attributes: %w", err)
			}
			if len(attributes) != len(req.AttributeIDs) {
				return apperrors.New(apperrors.CodeValidation, "unknown attribute id in attribute_ids")
			}
			if err := tx.Model(product).Association("Attributes").Append(attributes); err != nil {
				return fmt.Errorf("failed to attach attributes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(product.ID)
}

// VARIANTS

// GetVariant retrieves a variant with its product loaded
func (s *Service) GetVariant(id uint) (*Variant, error) {
	var variant Variant
	err := s.db.Preload("Product").Preload("AttributeValues").First(&variant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "variant %d not found", id)
		}
		return nil, fmt.Errorf("failed to retrieve variant: %w", err)
	}
	return &variant, nil
}

// CreateVariant creates a variant for a product. The attribute-value set must
// name exactly one value per variation axis and must not collide with an
// existing variant of the product.
func (s *Service) CreateVariant(productID uint, req *VariantCreateRequest) (*Variant, error) {
	var product Product
	if err := s.db.Preload("Attributes").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if err := s.validateSelection(&product, req.AttributeValueIDs); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "stock cannot be negative")
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "price cannot be negative")
	}

	optionsKey := OptionsKeyFor(req.AttributeValueIDs)

	var existing Variant
	if err := s.db.Where("product_id = ? AND options_key = ?", productID, optionsKey).First(&existing).Error; err == nil {
		return nil, apperrors.Newf(apperrors.CodeConflict,
			"product %d already has a variant for this attribute-value set", productID)
	}

	variant := &Variant{
		ProductID:  productID,
		SKU:        req.SKU,
		Price:      req.Price,
		Stock:      req.Stock,
		OptionsKey: optionsKey,
		IsActive:   true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(variant).Error; err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}
		if len(req.AttributeValueIDs) > 0 {
			var values []AttributeValue
			if err := tx.Where("id IN ?", req.AttributeValueIDs).Find(&values).Error; err != nil {
				return fmt.Errorf("failed to load attribute values: %w", err)
			}
			if err := tx.Model(variant).Association("AttributeValues").Append(values); err != nil {
				return fmt.Errorf("failed to attach attribute values: %w", err)
			}
		}
		if variant.Stock > 0 {
			movement := &StockMovement{
				VariantID:     variant.ID,
				MovementType:  MovementTypeInbound,
				Reason:        ReasonRestock,
				Quantity:      variant.Stock,
				PreviousStock: 0,
				NewStock:      variant.Stock,
				ReferenceType: "admin",
			}
			if err := tx.Create(movement).Error; err != nil {
				return fmt.Errorf("failed to record stock movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetVariant(variant.ID)
}

// ATTRIBUTES

// CreateAttribute creates a variation axis
func (s *Service) CreateAttribute(req *AttributeCreateRequest) (*Attribute, error) {
	attrType := req.Type
	if attrType == "" {
		attrType = AttributeTypeText
	}
	switch attrType {
	case AttributeTypeText, AttributeTypeColorHex, AttributeTypeNumber:
	default:
		return nil, apperrors.Newf(apperrors.CodeValidation, "invalid attribute type '%s'", attrType)
	}

	var existing Attribute
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, apperrors.Newf(apperrors.CodeConflict, "attribute '%s' already exists", req.Name)
	}

	attribute := &Attribute{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Type:        attrType,
		SortOrder:   req.SortOrder,
	}
	if err := s.db.Create(attribute).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}
	return attribute, nil
}

// GetAttributes retrieves all variation axes with their values
func (s *Service) GetAttributes() ([]Attribute, error) {
	var attributes []Attribute
	err := s.db.Preload("Values", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).Order("sort_order ASC, id ASC").Find(&attributes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve attributes: %w", err)
	}
	return attributes, nil
}

// AddAttributeValue adds a selectable value to an attribute
func (s *Service) AddAttributeValue(attributeID uint, req *AttributeValueCreateRequest) (*AttributeValue, error) {
	var attribute Attribute
	if err := s.db.First(&attribute, attributeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "attribute %d not found", attributeID)
		}
		return nil, fmt.Errorf("failed to load attribute: %w", err)
	}

	if attribute.Type == AttributeTypeColorHex && req.ColorHex == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "color_hex is required for color attributes")
	}

	var existing AttributeValue
	if err := s.db.Where("attribute_id = ? AND value = ?", attributeID, req.Value).First(&existing).Error; err == nil {
		return nil, apperrors.Newf(apperrors.CodeConflict,
			"attribute %d already has value '%s'", attributeID, req.Value)
	}

	value := &AttributeValue{
		AttributeID:  attributeID,
		Value:        req.Value,
		DisplayValue: req.DisplayValue,
		ColorHex:     req.ColorHex,
		SortOrder:    req.SortOrder,
	}
	if err := s.db.Create(value).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute value: %w", err)
	}
	return value, nil
}

// DeleteAttributeValue removes a value unless a variant still references it.
// Order line items snapshot the values they were sold with and never block
// catalog deletes.
func (s *Service) DeleteAttributeValue(valueID uint) error {
	var value AttributeValue
	if err := s.db.First(&value, valueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Newf(apperrors.CodeNotFound, "attribute value %d not found", valueID)
		}
		return fmt.Errorf("failed to load attribute value: %w", err)
	}

	var refs int64
	if err := s.db.Table("variant_attribute_values").
		Where("attribute_value_id = ?", valueID).
		Count(&refs).Error; err != nil {
		return fmt.Errorf("failed to count variant references: %w", err)
	}
	if refs > 0 {
		return apperrors.Newf(apperrors.CodeConflict,
			"attribute value %d is referenced by %d variant(s)", valueID, refs)
	}

	if err := s.db.Delete(&value).Error; err != nil {
		return fmt.Errorf("failed to delete attribute value: %w", err)
	}
	return nil
}

// DeleteAttribute removes an attribute and its values unless any of its
// values is still referenced by a variant
func (s *Service) DeleteAttribute(attributeID uint) error {
	var attribute Attribute
	if err := s.db.First(&attribute, attributeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Newf(apperrors.CodeNotFound, "attribute %d not found", attributeID)
		}
		return fmt.Errorf("failed to load attribute: %w", err)
	}

	var refs int64
	err := s.db.Table("variant_attribute_values").
		Joins("JOIN attribute_values av ON av.id = variant_attribute_values.attribute_value_id").
		Where("av.attribute_id = ?", attributeID).
		Count(&refs).Error
	if err != nil {
		return fmt.Errorf("failed to count variant references: %w", err)
	}
	if refs > 0 {
		return apperrors.Newf(apperrors.CodeConflict,
			"attribute %d has values referenced by %d variant(s)", attributeID, refs)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attribute_id = ?", attributeID).Delete(&AttributeValue{}).Error; err != nil {
			return fmt.Errorf("failed to delete attribute values: %w", err)
		}
		if err := tx.Delete(&attribute).Error; err != nil {
			return fmt.Errorf("failed to delete attribute: %w", err)
		}
		return nil
	})
}

// STOCK

// DecrementStock atomically takes quantity units off a variant's stock as
// part of the caller's transaction. The conditional update is the single
// authoritative guard against overselling: when no row matches, current
// stock is re-read to produce a precise insufficient-stock error.
func (s *Service) DecrementStock(tx *gorm.DB, variantID uint, quantity int, referenceType string, referenceID uint) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}

	var variant Variant
	if err := tx.Preload("Product").First(&variant, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Newf(apperrors.CodeNotFound, "variant %d not found", variantID)
		}
		return fmt.Errorf("failed to load variant: %w", err)
	}

	// Untracked products never run out
	if variant.Product != nil && !variant.Product.TrackStock {
		return nil
	}

	result := tx.Model(&Variant{}).
		Where("id = ? AND stock >= ?", variantID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var current Variant
		if err := tx.First(&current, variantID).Error; err != nil {
			return fmt.Errorf("failed to re-read variant stock: %w", err)
		}
		return &apperrors.InsufficientStockError{
			VariantID: variantID,
			Available: current.Stock,
			Requested: quantity,
		}
	}

	// Ledger values come from the row as the update left it, not from the
	// read above, which may be stale under concurrent decrements
	var after Variant
	if err := tx.Select("stock").First(&after, variantID).Error; err != nil {
		return fmt.Errorf("failed to re-read variant stock: %w", err)
	}

	movement := &StockMovement{
		VariantID:     variantID,
		MovementType:  MovementTypeOutbound,
		Reason:        ReasonSale,
		Quantity:      quantity,
		PreviousStock: after.Stock + quantity,
		NewStock:      after.Stock,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}

// Restock atomically returns quantity units to a variant's stock as part of
// the caller's transaction
func (s *Service) Restock(tx *gorm.DB, variantID uint, quantity int, reason MovementReason, referenceType string, referenceID uint) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}

	var variant Variant
	if err := tx.Preload("Product").First(&variant, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Newf(apperrors.CodeNotFound, "variant %d not found", variantID)
		}
		return fmt.Errorf("failed to load variant: %w", err)
	}

	if variant.Product != nil && !variant.Product.TrackStock {
		return nil
	}

	result := tx.Model(&Variant{}).
		Where("id = ?", variantID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restock: %w", result.Error)
	}

	var after Variant
	if err := tx.Select("stock").First(&after, variantID).Error; err != nil {
		return fmt.Errorf("failed to re-read variant stock: %w", err)
	}

	movement := &StockMovement{
		VariantID:     variantID,
		MovementType:  MovementTypeInbound,
		Reason:        reason,
		Quantity:      quantity,
		PreviousStock: after.Stock - quantity,
		NewStock:      after.Stock,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	return nil
}

// SetStock is the admin stock adjustment. It records the delta as an
// adjustment movement.
func (s *Service) SetStock(variantID uint, newStock int) (*Variant, error) {
	if newStock < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "stock cannot be negative")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var variant Variant
		if err := tx.First(&variant, variantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Newf(apperrors.CodeNotFound, "variant %d not found", variantID)
			}
			return fmt.Errorf("failed to load variant: %w", err)
		}
		if variant.Stock == newStock {
			return nil
		}

		movementType := MovementTypeInbound
		delta := newStock - variant.Stock
		if delta < 0 {
			movementType = MovementTypeOutbound
			delta = -delta
		}

		if err := tx.Model(&Variant{}).Where("id = ?", variantID).Update("stock", newStock).Error; err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		movement := &StockMovement{
			VariantID:     variantID,
			MovementType:  movementType,
			Reason:        ReasonAdjustment,
			Quantity:      delta,
			PreviousStock: variant.Stock,
			NewStock:      newStock,
			ReferenceType: "admin",
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetVariant(variantID)
}

// GetStockMovements retrieves the movement ledger for a variant, newest first
func (s *Service) GetStockMovements(variantID uint) ([]StockMovement, error) {
	var movements []StockMovement
	err := s.db.Where("variant_id = ?", variantID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}
	return movements, nil
}
