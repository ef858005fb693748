// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/pricing"
)

// Status represents the fulfillment state of an order
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// PaymentStatus represents the payment state of an order. Payment capture
// happens outside this system; staff flip the flag when money arrives.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Order represents a placed order. Everything on it is a snapshot taken at
// creation time; later catalog or settings changes never touch it.
type Order struct {
	ID            uint                 `gorm:"primaryKey" json:"id"`
	OrderNumber   string               `gorm:"uniqueIndex;not null;size:32" json:"order_number"`
	UserID        *uint                `gorm:"index" json:"user_id,omitempty"`
	Status        Status               `gorm:"not null;default:'pending';size:20;index" json:"status"`
	PaymentStatus PaymentStatus        `gorm:"not null;default:'pending';size:20" json:"payment_status"`
	DeliveryType  pricing.DeliveryType `gorm:"not null;size:20" json:"delivery_type"`

	// Totals in minor units
	Subtotal    int64  `gorm:"not null" json:"subtotal"`
	DeliveryFee int64  `gorm:"not null" json:"delivery_fee"`
	Discount    int64  `gorm:"not null;default:0" json:"discount"`
	Total       int64  `gorm:"not null" json:"total"`
	Currency    string `gorm:"not null;size:3" json:"currency"`

	// Customer snapshot
	CustomerName  string `gorm:"size:255" json:"customer_name"`
	CustomerEmail string `gorm:"size:255" json:"customer_email"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone"`

	// Delivery address snapshot, empty for store pickup
	DeliveryAddress string `gorm:"size:500" json:"delivery_address,omitempty"`
	DeliveryCity    string `gorm:"size:100" json:"delivery_city,omitempty"`
	DeliveryNotes   string `gorm:"size:500" json:"delivery_notes,omitempty"`

	Notes     string    `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents a line of a placed order. Name, options and price
// are copied from the cart at checkout so the line stays meaningful even
// if the variant is later changed or removed.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	VariantID   uint      `gorm:"not null" json:"variant_id"`
	ProductID   uint      `gorm:"not null" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	VariantDesc string    `gorm:"size:255" json:"variant_desc"` // e.g. "Size: M / Color: Red"
	SKU         string    `gorm:"size:100" json:"sku"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	TotalPrice  int64     `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusHistory records every status transition of an order
type OrderStatusHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	FromStatus Status    `gorm:"size:20" json:"from_status"`
	ToStatus   Status    `gorm:"not null;size:20" json:"to_status"`
	Note       string    `gorm:"size:500" json:"note,omitempty"`
	ChangedBy  *uint     `json:"changed_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }
