// internal/domain/settings/entity.go
package settings

import "time"

// StoreSettings is the singleton row of store-level configuration. ID is
// always 1; Seed creates it from config defaults on first boot.
type StoreSettings struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Currency              string    `gorm:"not null;size:3" json:"currency"`
	DeliveryFee           int64     `gorm:"not null;default:0" json:"delivery_fee"`                      // minor units
	FreeDeliveryThreshold int64     `gorm:"not null;default:0" json:"free_delivery_threshold"`           // minor units; <= 0 disables
	StoreName             string    `gorm:"size:255" json:"store_name"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (StoreSettings) TableName() string {
	return "store_settings"
}
