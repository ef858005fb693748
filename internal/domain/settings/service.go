// internal/domain/settings/service.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/pricing"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	settingsID       = 1
	settingsCacheKey = "store:settings"
	settingsCacheTTL = 5 * time.Minute
)

// Service handles store settings
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new settings service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// UpdateRequest represents a settings update. Nil fields are left unchanged.
type UpdateRequest struct {
	Currency              *string `json:"currency"`
	DeliveryFee           *int64  `json:"delivery_fee"`
	FreeDeliveryThreshold *int64  `json:"free_delivery_threshold"`
	StoreName             *string `json:"store_name"`
}

// Seed creates the singleton row from config defaults if it does not exist
func (s *Service) Seed() error {
	var existing StoreSettings
	err := s.db.First(&existing, settingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check store settings: %w", err)
	}

	row := &StoreSettings{
		ID:                    settingsID,
		Currency:              s.config.Store.Currency,
		DeliveryFee:           s.config.Store.DeliveryFee,
		FreeDeliveryThreshold: s.config.Store.FreeDeliveryThreshold,
		StoreName:             s.config.App.Name,
	}
	if err := s.db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to seed store settings: %w", err)
	}
	return nil
}

// Get retrieves the store settings, serving from Redis when possible
func (s *Service) Get() (*StoreSettings, error) {
	ctx := context.Background()

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, settingsCacheKey).Result()
		if err == nil {
			var row StoreSettings
			if err := json.Unmarshal([]byte(cached), &row); err == nil {
				return &row, nil
			}
		}
	}

	var row StoreSettings
	if err := s.db.First(&row, settingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "store settings not seeded")
		}
		return nil, fmt.Errorf("failed to retrieve store settings: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(&row); err == nil {
			s.redisClient.Set(ctx, settingsCacheKey, data, settingsCacheTTL)
		}
	}

	return &row, nil
}

// Update applies a partial settings update and invalidates the cache
func (s *Service) Update(req *UpdateRequest) (*StoreSettings, error) {
	var row StoreSettings
	if err := s.db.First(&row, settingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "store settings not seeded")
		}
		return nil, fmt.Errorf("failed to retrieve store settings: %w", err)
	}

	if req.Currency != nil {
		if len(*req.Currency) != 3 {
			return nil, apperrors.New(apperrors.CodeValidation, "currency must be a 3-letter code")
		}
		row.Currency = *req.Currency
	}
	if req.DeliveryFee != nil {
		if *req.DeliveryFee < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "delivery_fee cannot be negative")
		}
		row.DeliveryFee = *req.DeliveryFee
	}
	if req.FreeDeliveryThreshold != nil {
		row.FreeDeliveryThreshold = *req.FreeDeliveryThreshold
	}
	if req.StoreName != nil {
		row.StoreName = *req.StoreName
	}

	if err := s.db.Save(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to update store settings: %w", err)
	}

	if s.redisClient != nil {
		s.redisClient.Del(context.Background(), settingsCacheKey)
	}

	return &row, nil
}

// PricingSettings projects the settings row into the value object the
// pricing engine takes
func (s *Service) PricingSettings() (pricing.Settings, error) {
	row, err := s.Get()
	if err != nil {
		return pricing.Settings{}, err
	}
	return pricing.Settings{
		DeliveryFee:           row.DeliveryFee,
		FreeDeliveryThreshold: row.FreeDeliveryThreshold,
	}, nil
}
