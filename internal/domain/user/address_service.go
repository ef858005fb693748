// internal/domain/user/address_service.go
package user

import (
	"errors"
	"fmt"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// AddressRequest represents address creation or update data
type AddressRequest struct {
	Label        string `json:"label"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	Phone        string `json:"phone"`
	Notes        string `json:"notes"`
	IsDefault    bool   `json:"is_default"`
}

// CreateAddress saves a delivery address for a user
func (s *Service) CreateAddress(userID uint, req *AddressRequest) (*Address, error) {
	if req.IsDefault {
		if err := s.db.Model(&Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return nil, fmt.Errorf("failed to reset default address: %w", err)
		}
	}

	address := &Address{
		UserID:       userID,
		Label:        req.Label,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		Phone:        req.Phone,
		Notes:        req.Notes,
		IsDefault:    req.IsDefault,
	}
	if err := s.db.Create(address).Error; err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

// GetAddresses retrieves all addresses of a user
func (s *Service) GetAddresses(userID uint) ([]Address, error) {
	var addresses []Address
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves one address, scoped to its owner
func (s *Service) GetAddress(userID, addressID uint) (*Address, error) {
	var address Address
	err := s.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "address %d not found", addressID)
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}
	return &address, nil
}

// DeleteAddress removes an address, scoped to its owner
func (s *Service) DeleteAddress(userID, addressID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.CodeNotFound, "address %d not found", addressID)
	}
	return nil
}
