// internal/domain/catalog/service_test.go
package catalog

import (
	"testing"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVariant_MatchesSelection(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	m := tc.value(t, tc.Size, "M")
	red := tc.value(t, tc.Color, "red")

	variant, err := s.ResolveVariant(tc.Product.ID, []uint{m.ID, red.ID})
	require.NoError(t, err)

	assert.Equal(t, "SHIRT-1-M-red", variant.SKU)
	assert.Equal(t, tc.Product.ID, variant.ProductID)
	require.NotNil(t, variant.Product)
	assert.Equal(t, int64(4000), variant.UnitPrice(variant.Product))

	// Order of the selection must not matter
	same, err := s.ResolveVariant(tc.Product.ID, []uint{red.ID, m.ID})
	require.NoError(t, err)
	assert.Equal(t, variant.ID, same.ID)
}

func TestResolveVariant_NoMatchingVariant(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	m := tc.value(t, tc.Size, "M")
	red := tc.value(t, tc.Color, "red")

	// Retire the M/red combination
	require.NoError(t, s.db.Where("options_key = ?", OptionsKeyFor([]uint{m.ID, red.ID})).
		Delete(&Variant{}).Error)

	_, err := s.ResolveVariant(tc.Product.ID, []uint{m.ID, red.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNoMatchingVariant, apperrors.As(err).Code())
}

func TestResolveVariant_InvalidSelection(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	small := tc.value(t, tc.Size, "S")
	medium := tc.value(t, tc.Size, "M")
	red := tc.value(t, tc.Color, "red")

	cases := []struct {
		name     string
		valueIDs []uint
	}{
		{"missing axis", []uint{small.ID}},
		{"two values for one axis", []uint{small.ID, medium.ID}},
		{"unknown value", []uint{small.ID, 99999}},
		{"extra value", []uint{small.ID, medium.ID, red.ID}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ResolveVariant(tc.Product.ID, tt.valueIDs)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInvalidAttributeSelection, apperrors.As(err).Code())
		})
	}
}

func TestResolveVariant_UnknownProduct(t *testing.T) {
	s := newTestService(t)

	_, err := s.ResolveVariant(12345, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())
}

func TestEffectivePrice_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		basePrice int64
		discount  int
		want      int64
	}{
		{4000, 0, 4000},
		{2500, 10, 2250},
		{999, 15, 849},   // 849.15 rounds down
		{1990, 25, 1493}, // 1492.5 rounds up
		{1, 50, 1},       // 0.5 rounds up
		{100, 100, 0},
	}

	for _, tt := range cases {
		p := &Product{BasePrice: tt.basePrice, DiscountPercent: tt.discount}
		assert.Equal(t, tt.want, p.EffectivePrice(),
			"base %d at %d%%", tt.basePrice, tt.discount)
	}
}

func TestVariantUnitPrice_OverrideWins(t *testing.T) {
	p := &Product{BasePrice: 4000, DiscountPercent: 10}
	override := int64(3000)

	v := &Variant{Price: &override}
	assert.Equal(t, int64(3000), v.UnitPrice(p))

	// A zero override means free, not "no override"
	free := int64(0)
	v = &Variant{Price: &free}
	assert.Equal(t, int64(0), v.UnitPrice(p))

	v = &Variant{}
	assert.Equal(t, int64(3600), v.UnitPrice(p))
}

func TestVariantInStock_UntrackedAlwaysAvailable(t *testing.T) {
	p := &Product{TrackStock: false}
	v := &Variant{Stock: 0}
	assert.True(t, v.InStock(p, 100))

	p.TrackStock = true
	assert.False(t, v.InStock(p, 1))
	v.Stock = 3
	assert.True(t, v.InStock(p, 3))
	assert.False(t, v.InStock(p, 4))
}

func TestCreateVariant_RejectsDuplicateValueSet(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	m := tc.value(t, tc.Size, "M")
	red := tc.value(t, tc.Color, "red")

	_, err := s.CreateVariant(tc.Product.ID, &VariantCreateRequest{
		SKU:               "SHIRT-1-DUP",
		Stock:             5,
		AttributeValueIDs: []uint{red.ID, m.ID}, // same set, different order
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())
}

func TestDecrementStock(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 3)

	small := tc.value(t, tc.Size, "S")
	black := tc.value(t, tc.Color, "black")
	variant, err := s.ResolveVariant(tc.Product.ID, []uint{small.ID, black.ID})
	require.NoError(t, err)

	require.NoError(t, s.DecrementStock(s.db, variant.ID, 2, "order", 1))

	reloaded, err := s.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Stock)

	movements, err := s.GetStockMovements(variant.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, MovementTypeOutbound, movements[0].MovementType)
	assert.Equal(t, ReasonSale, movements[0].Reason)
	assert.Equal(t, 3, movements[0].PreviousStock)
	assert.Equal(t, 1, movements[0].NewStock)
}

func TestDecrementStock_Insufficient(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 3)

	small := tc.value(t, tc.Size, "S")
	black := tc.value(t, tc.Color, "black")
	variant, err := s.ResolveVariant(tc.Product.ID, []uint{small.ID, black.ID})
	require.NoError(t, err)

	err = s.DecrementStock(s.db, variant.ID, 4, "order", 1)
	require.Error(t, err)

	stockErr, ok := apperrors.IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, variant.ID, stockErr.VariantID)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)

	// Stock untouched, no movement recorded
	reloaded, err := s.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock)

	movements, err := s.GetStockMovements(variant.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestRestock(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 1)

	small := tc.value(t, tc.Size, "S")
	black := tc.value(t, tc.Color, "black")
	variant, err := s.ResolveVariant(tc.Product.ID, []uint{small.ID, black.ID})
	require.NoError(t, err)

	require.NoError(t, s.Restock(s.db, variant.ID, 5, ReasonRestock, "order", 7))

	reloaded, err := s.GetVariant(variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, reloaded.Stock)

	movements, err := s.GetStockMovements(variant.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, MovementTypeInbound, movements[0].MovementType)
	assert.Equal(t, uint(7), movements[0].ReferenceID)
}

func TestStockMovements_LedgerChainsAcrossOperations(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	small := tc.value(t, tc.Size, "S")
	black := tc.value(t, tc.Color, "black")
	variant, err := s.ResolveVariant(tc.Product.ID, []uint{small.ID, black.ID})
	require.NoError(t, err)

	require.NoError(t, s.DecrementStock(s.db, variant.ID, 2, "order", 1))
	require.NoError(t, s.DecrementStock(s.db, variant.ID, 3, "order", 2))
	require.NoError(t, s.Restock(s.db, variant.ID, 3, ReasonRestock, "order", 2))

	reloaded, err := s.GetVariant(variant.ID)
	require.NoError(t, err)
	require.Equal(t, 8, reloaded.Stock)

	movements, err := s.GetStockMovements(variant.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3)

	// Newest first; every row's figures chain onto its predecessor and the
	// last NewStock matches the live row
	assert.Equal(t, 8, movements[0].NewStock)
	for i := 0; i < len(movements)-1; i++ {
		assert.Equal(t, movements[i+1].NewStock, movements[i].PreviousStock)
	}
	assert.Equal(t, 10, movements[2].PreviousStock)
}

func TestDeleteAttributeValue_BlockedWhileReferenced(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	m := tc.value(t, tc.Size, "M")

	err := s.DeleteAttributeValue(m.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())

	// An unreferenced value deletes cleanly
	orphan, err := s.AddAttributeValue(tc.Size.ID, &AttributeValueCreateRequest{Value: "XL"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteAttributeValue(orphan.ID))
}

func TestDeleteAttribute_BlockedWhileReferenced(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	err := s.DeleteAttribute(tc.Size.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.As(err).Code())

	// A fresh attribute with no variant references deletes with its values
	material, err := s.CreateAttribute(&AttributeCreateRequest{Name: "material"})
	require.NoError(t, err)
	_, err = s.AddAttributeValue(material.ID, &AttributeValueCreateRequest{Value: "cotton"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteAttribute(material.ID))
}

func TestSetStock_RecordsAdjustment(t *testing.T) {
	s := newTestService(t)
	tc := seedShirt(t, s, 10)

	small := tc.value(t, tc.Size, "S")
	black := tc.value(t, tc.Color, "black")
	variant, err := s.ResolveVariant(tc.Product.ID, []uint{small.ID, black.ID})
	require.NoError(t, err)

	updated, err := s.SetStock(variant.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Stock)

	movements, err := s.GetStockMovements(variant.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, MovementTypeOutbound, movements[0].MovementType)
	assert.Equal(t, ReasonAdjustment, movements[0].Reason)
	assert.Equal(t, 6, movements[0].Quantity)
}

func TestOptionsKeyFor_Normalizes(t *testing.T) {
	assert.Equal(t, "3-7-19", OptionsKeyFor([]uint{19, 3, 7}))
	assert.Equal(t, "3-7-19", OptionsKeyFor([]uint{3, 7, 19}))
	assert.Equal(t, "", OptionsKeyFor(nil))
}
