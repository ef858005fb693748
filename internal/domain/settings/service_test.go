// internal/domain/settings/service_test.go
package settings

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:settings_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&StoreSettings{}))

	cfg := &config.Config{
		App: config.AppConfig{Name: "Bella Luna"},
		Store: config.StoreConfig{
			Currency:              "USD",
			DeliveryFee:           500,
			FreeDeliveryThreshold: 10000,
		},
	}
	return NewService(db, nil, cfg)
}

func TestSeedAndGet(t *testing.T) {
	s := newTestService(t)

	_, err := s.Get()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.As(err).Code())

	require.NoError(t, s.Seed())

	row, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "USD", row.Currency)
	assert.Equal(t, int64(500), row.DeliveryFee)
	assert.Equal(t, int64(10000), row.FreeDeliveryThreshold)
	assert.Equal(t, "Bella Luna", row.StoreName)

	// Seeding again is a no-op
	require.NoError(t, s.Seed())
	var count int64
	require.NoError(t, s.db.Model(&StoreSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdate_Partial(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Seed())

	fee := int64(700)
	row, err := s.Update(&UpdateRequest{DeliveryFee: &fee})
	require.NoError(t, err)
	assert.Equal(t, int64(700), row.DeliveryFee)
	assert.Equal(t, "USD", row.Currency) // untouched

	badCurrency := "DOLLARS"
	_, err = s.Update(&UpdateRequest{Currency: &badCurrency})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())

	negative := int64(-1)
	_, err = s.Update(&UpdateRequest{DeliveryFee: &negative})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.As(err).Code())

	// Threshold zero disables free delivery and is allowed
	zero := int64(0)
	row, err = s.Update(&UpdateRequest{FreeDeliveryThreshold: &zero})
	require.NoError(t, err)
	assert.Equal(t, int64(0), row.FreeDeliveryThreshold)
}

func TestPricingSettings(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.Seed())

	ps, err := s.PricingSettings()
	require.NoError(t, err)
	assert.Equal(t, int64(500), ps.DeliveryFee)
	assert.Equal(t, int64(10000), ps.FreeDeliveryThreshold)
}
