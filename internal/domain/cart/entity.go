// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// CartItem represents a cart line for a signed-in customer. One row per
// variant per user; adding the same variant again merges quantities.
// UnitPrice is the snapshot taken at add/update time.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_variant" json:"user_id"`
	VariantID uint      `gorm:"not null;uniqueIndex:idx_cart_user_variant" json:"variant_id"`
	ProductID uint      `gorm:"not null" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"` // minor units
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// SessionCartItem is a guest cart line stored in Redis
type SessionCartItem struct {
	VariantID uint      `json:"variant_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	AddedAt   time.Time `json:"added_at"`
}

// SessionCart is a guest cart stored as JSON under cart:session:<id>
type SessionCart struct {
	SessionID string            `json:"session_id"`
	Items     []SessionCartItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
