// internal/domain/catalog/entity.go
package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AttributeType represents how an attribute value is rendered
type AttributeType string

const (
	AttributeTypeText     AttributeType = "text"
	AttributeTypeColorHex AttributeType = "color_hex"
	AttributeTypeNumber   AttributeType = "number"
)

// Attribute represents a variation axis (e.g. Size, Color)
type Attribute struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	DisplayName string         `gorm:"size:255" json:"display_name"`
	Type        AttributeType  `gorm:"not null;default:'text';size:20" json:"type"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Values []AttributeValue `gorm:"foreignKey:AttributeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"values,omitempty"`
}

// AttributeValue represents one selectable value of an attribute
type AttributeValue struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AttributeID  uint      `gorm:"not null;index" json:"attribute_id"`
	Value        string    `gorm:"not null;size:100" json:"value"`
	DisplayValue string    `gorm:"size:255" json:"display_value,omitempty"`
	ColorHex     string    `gorm:"size:7" json:"color_hex,omitempty"`
	SortOrder    int       `gorm:"default:0" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category represents product categories
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Product represents the product entity
type Product struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	SKU             string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name            string         `gorm:"not null;size:255" json:"name"`
	Slug            string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description     string         `gorm:"type:text" json:"description"`
	BaseCost        int64          `json:"base_cost"`                 // Cost in cents, for margin reporting
	BasePrice       int64          `gorm:"not null" json:"base_price"` // Price in cents before discount
	DiscountPercent int            `gorm:"default:0;check:discount_percent >= 0 AND discount_percent <= 100" json:"discount_percent"`
	TrackStock      bool           `gorm:"default:true" json:"track_stock"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	IsFeatured      bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Categories []Category  `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Attributes []Attribute `gorm:"many2many:product_attributes;" json:"attributes,omitempty"` // variation axes
	Variants   []Variant   `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// Variant represents a purchasable attribute-value combination of a product.
// OptionsKey is the sorted attribute-value id tuple; its uniqueness per
// product guarantees no two variants share the same value-set.
type Variant struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ProductID  uint           `gorm:"not null;index;uniqueIndex:idx_variants_product_options" json:"product_id"`
	SKU        string         `gorm:"size:100;index" json:"sku,omitempty"`
	Price      *int64         `json:"price,omitempty"` // Overrides product price when set, in cents
	Stock      int            `gorm:"default:0;check:stock >= 0" json:"stock"`
	OptionsKey string         `gorm:"not null;size:255;uniqueIndex:idx_variants_product_options" json:"options_key"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product         *Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	AttributeValues []AttributeValue `gorm:"many2many:variant_attribute_values;" json:"attribute_values,omitempty"`
}

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"
	MovementTypeOutbound MovementType = "outbound"
)

// MovementReason represents why stock changed
type MovementReason string

const (
	ReasonSale       MovementReason = "sale"
	ReasonRestock    MovementReason = "restock"
	ReasonAdjustment MovementReason = "adjustment"
)

// StockMovement records every authoritative stock change for auditability
type StockMovement struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VariantID     uint           `gorm:"not null;index" json:"variant_id"`
	MovementType  MovementType   `gorm:"not null;size:20" json:"movement_type"`
	Reason        MovementReason `gorm:"not null;size:30" json:"reason"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	PreviousStock int            `gorm:"not null" json:"previous_stock"`
	NewStock      int            `gorm:"not null" json:"new_stock"`
	ReferenceType string         `gorm:"size:50" json:"reference_type"` // "order", "admin"
	ReferenceID   uint           `json:"reference_id"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TableName overrides
func (Attribute) TableName() string      { return "attributes" }
func (AttributeValue) TableName() string { return "attribute_values" }
func (Category) TableName() string       { return "categories" }
func (Product) TableName() string        { return "products" }
func (Variant) TableName() string        { return "variants" }
func (StockMovement) TableName() string  { return "stock_movements" }

// Business methods

// EffectivePrice returns the product's base price with the percent discount
// applied. The division is the only fractional money arithmetic in the
// system; it is rounded half-up to whole cents so repeated reads always
// produce the same figure.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPercent <= 0 {
		return p.BasePrice
	}
	price := decimal.NewFromInt(p.BasePrice).
		Mul(decimal.NewFromInt(int64(100 - p.DiscountPercent))).
		Div(decimal.NewFromInt(100))
	return price.Round(0).IntPart()
}

// UnitPrice returns the price a shopper pays for this variant: the variant
// override when set (zero included, for free variants), the product's
// discounted base price otherwise.
func (v *Variant) UnitPrice(p *Product) int64 {
	if v.Price != nil {
		return *v.Price
	}
	return p.EffectivePrice()
}

// InStock reports whether the variant can cover the requested quantity.
// Products that don't track stock are always available.
func (v *Variant) InStock(p *Product, quantity int) bool {
	if !p.TrackStock {
		return true
	}
	return v.Stock >= quantity
}

// OptionsKeyFor normalizes a set of attribute-value ids into the canonical
// lookup key stored on Variant.OptionsKey.
func OptionsKeyFor(valueIDs []uint) string {
	ids := make([]uint, len(valueIDs))
	copy(ids, valueIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, "-")
}
