// internal/domain/catalog/testhelpers_test.go
package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService spins up a catalog service over a fresh in-memory database
func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&Category{},
		&Attribute{},
		&AttributeValue{},
		&Product{},
		&Variant{},
		&StockMovement{},
	))

	return NewService(db, &config.Config{})
}

// testCatalog is the fixture most tests share: a shirt with size and color
// axes and one variant per combination
type testCatalog struct {
	Product *Product
	Size    *Attribute // S, M
	Color   *Attribute // black, red
}

func (tc *testCatalog) value(t *testing.T, attr *Attribute, val string) *AttributeValue {
	t.Helper()
	for i := range attr.Values {
		if attr.Values[i].Value == val {
			return &attr.Values[i]
		}
	}
	t.Fatalf("no value %q on attribute %s", val, attr.Name)
	return nil
}

func seedShirt(t *testing.T, s *Service, stock int) *testCatalog {
	t.Helper()

	size := &Attribute{
		Name: "size", DisplayName: "Size", Type: AttributeTypeText,
		Values: []AttributeValue{
			{Value: "S", DisplayValue: "Small"},
			{Value: "M", DisplayValue: "Medium"},
		},
	}
	require.NoError(t, s.db.Create(size).Error)

	color := &Attribute{
		Name: "color", DisplayName: "Color", Type: AttributeTypeColorHex,
		Values: []AttributeValue{
			{Value: "black", DisplayValue: "Black", ColorHex: "#000000"},
			{Value: "red", DisplayValue: "Red", ColorHex: "#FF0000"},
		},
	}
	require.NoError(t, s.db.Create(color).Error)

	product := &Product{
		SKU:        "SHIRT-1",
		Name:       "Test Shirt",
		Slug:       "test-shirt",
		BasePrice:  4000,
		TrackStock: true,
		IsActive:   true,
		Attributes: []Attribute{*size, *color},
	}
	require.NoError(t, s.db.Create(product).Error)

	for _, sv := range size.Values {
		for _, cv := range color.Values {
			variant := &Variant{
				ProductID:       product.ID,
				SKU:             fmt.Sprintf("SHIRT-1-%s-%s", sv.Value, cv.Value),
				Stock:           stock,
				OptionsKey:      OptionsKeyFor([]uint{sv.ID, cv.ID}),
				IsActive:        true,
				AttributeValues: []AttributeValue{sv, cv},
			}
			require.NoError(t, s.db.Create(variant).Error)
		}
	}

	return &testCatalog{Product: product, Size: size, Color: color}
}
