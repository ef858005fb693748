// internal/domain/catalog/resolver.go
package catalog

import (
	"errors"
	"fmt"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// ResolveVariant finds the single variant of a product matching the given
// attribute-value selection. The selection must name exactly one value for
// every variation axis of the product; the lookup itself is a single indexed
// query on the normalized options key.
func (s *Service) ResolveVariant(productID uint, valueIDs []uint) (*Variant, error) {
	var product Product
	if err := s.db.Preload("Attributes").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if !product.IsActive {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "product %d not found", productID)
	}

	if err := s.validateSelection(&product, valueIDs); err != nil {
		return nil, err
	}

	var variant Variant
	err := s.db.Preload("AttributeValues").
		Where("product_id = ? AND options_key = ? AND is_active = ?", productID, OptionsKeyFor(valueIDs), true).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.CodeNoMatchingVariant,
				"no variant of product %d matches the selected options", productID)
		}
		return nil, fmt.Errorf("failed to resolve variant: %w", err)
	}

	variant.Product = &product
	return &variant, nil
}

// validateSelection checks that the selection covers every variation axis of
// the product with exactly one value each.
func (s *Service) validateSelection(product *Product, valueIDs []uint) error {
	if len(valueIDs) != len(product.Attributes) {
		return apperrors.Newf(apperrors.CodeInvalidAttributeSelection,
			"product %d requires %d attribute selections, got %d",
			product.ID, len(product.Attributes), len(valueIDs))
	}
	if len(valueIDs) == 0 {
		return nil
	}

	var values []AttributeValue
	if err := s.db.Where("id IN ?", valueIDs).Find(&values).Error; err != nil {
		return fmt.Errorf("failed to load attribute values: %w", err)
	}
	if len(values) != len(valueIDs) {
		return apperrors.New(apperrors.CodeInvalidAttributeSelection,
			"selection references unknown attribute values")
	}

	axes := make(map[uint]bool, len(product.Attributes))
	for _, attr := range product.Attributes {
		axes[attr.ID] = false
	}
	for _, value := range values {
		seen, ok := axes[value.AttributeID]
		if !ok {
			return apperrors.Newf(apperrors.CodeInvalidAttributeSelection,
				"value %d does not belong to a variation axis of product %d", value.ID, product.ID)
		}
		if seen {
			return apperrors.Newf(apperrors.CodeInvalidAttributeSelection,
				"multiple values selected for attribute %d", value.AttributeID)
		}
		axes[value.AttributeID] = true
	}

	return nil
}

// CheckAvailability is the advisory stock check used while shoppers build a
// cart. It never reserves anything; checkout re-checks authoritatively.
func (s *Service) CheckAvailability(variantID uint, quantity int) error {
	variant, err := s.GetVariant(variantID)
	if err != nil {
		return err
	}
	if !variant.InStock(variant.Product, quantity) {
		return apperrors.Newf(apperrors.CodeOutOfStock,
			"variant %d has only %d in stock", variantID, variant.Stock)
	}
	return nil
}
