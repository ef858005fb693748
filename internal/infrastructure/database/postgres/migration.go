// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/cart"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/order"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/settings"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order matters: catalog before cart and orders
	models := []interface{}{
		// User domain
		&user.User{},
		&user.Address{},

		// Catalog domain
		&catalog.Category{},
		&catalog.Attribute{},
		&catalog.AttributeValue{},
		&catalog.Product{},
		&catalog.Variant{},
		&catalog.StockMovement{},

		// Cart domain
		&cart.CartItem{},

		// Order domain
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		// Store settings
		&settings.StoreSettings{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products(is_featured, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_variants_product_active ON variants(product_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_attribute_values_attribute ON attribute_values(attribute_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_variant_created ON stock_movements(variant_id, created_at DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedAdminUser creates the default staff account
func (m *Migration) seedAdminUser() error {
	var count int64
	if err := m.db.Model(&user.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("👤 Seeding admin user...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &user.User{
		Email:     "admin@bellaluna.example",
		Password:  string(hashedPassword),
		FirstName: "Store",
		LastName:  "Admin",
		IsActive:  true,
		IsAdmin:   true,
	}
	if err := m.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("⚠️ Default admin created (admin@bellaluna.example / admin123!) - change this password")
	return nil
}

// seedCatalog creates a small demo catalog: two variation axes and two
// products with variants, enough to exercise the storefront end to end
func (m *Migration) seedCatalog() error {
	var count int64
	if err := m.db.Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check products: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("🏷️ Seeding demo catalog...")

	size := catalog.Attribute{
		Name:        "size",
		DisplayName: "Size",
		Type:        catalog.AttributeTypeText,
		SortOrder:   1,
		Values: []catalog.AttributeValue{
			{Value: "S", DisplayValue: "Small", SortOrder: 1},
			{Value: "M", DisplayValue: "Medium", SortOrder: 2},
			{Value: "L", DisplayValue: "Large", SortOrder: 3},
		},
	}
	color := catalog.Attribute{
		Name:        "color",
		DisplayName: "Color",
		Type:        catalog.AttributeTypeColorHex,
		SortOrder:   2,
		Values: []catalog.AttributeValue{
			{Value: "black", DisplayValue: "Black", ColorHex: "#000000", SortOrder: 1},
			{Value: "rose", DisplayValue: "Rose", ColorHex: "#E8ADAA", SortOrder: 2},
		},
	}
	if err := m.db.Create(&size).Error; err != nil {
		return fmt.Errorf("failed to seed size attribute: %w", err)
	}
	if err := m.db.Create(&color).Error; err != nil {
		return fmt.Errorf("failed to seed color attribute: %w", err)
	}

	apparel := catalog.Category{Name: "Apparel", Slug: "apparel", SortOrder: 1, IsActive: true}
	if err := m.db.Create(&apparel).Error; err != nil {
		return fmt.Errorf("failed to seed category: %w", err)
	}

	tee := catalog.Product{
		SKU:         "BL-TEE-001",
		Name:        "Luna Tee",
		Slug:        "luna-tee",
		Description: "Soft cotton tee with the Bella Luna crescent print",
		BaseCost:    1200,
		BasePrice:   4000,
		TrackStock:  true,
		IsActive:    true,
		IsFeatured:  true,
		Categories:  []catalog.Category{apparel},
		Attributes:  []catalog.Attribute{size, color},
	}
	if err := m.db.Create(&tee).Error; err != nil {
		return fmt.Errorf("failed to seed product: %w", err)
	}

	for _, sv := range size.Values {
		for _, cv := range color.Values {
			variant := catalog.Variant{
				ProductID:       tee.ID,
				SKU:             fmt.Sprintf("%s-%s-%s", tee.SKU, sv.Value, cv.Value),
				Stock:           10,
				OptionsKey:      catalog.OptionsKeyFor([]uint{sv.ID, cv.ID}),
				IsActive:        true,
				AttributeValues: []catalog.AttributeValue{sv, cv},
			}
			if err := m.db.Create(&variant).Error; err != nil {
				return fmt.Errorf("failed to seed variant: %w", err)
			}
		}
	}

	// A single-variant product without variation axes
	candle := catalog.Product{
		SKU:             "BL-CANDLE-001",
		Name:            "Moonlight Candle",
		Slug:            "moonlight-candle",
		Description:     "Hand-poured soy candle, lavender and cedar",
		BaseCost:        800,
		BasePrice:       2500,
		DiscountPercent: 10,
		TrackStock:      true,
		IsActive:        true,
		Categories:      []catalog.Category{apparel},
	}
	if err := m.db.Create(&candle).Error; err != nil {
		return fmt.Errorf("failed to seed product: %w", err)
	}
	candleVariant := catalog.Variant{
		ProductID:  candle.ID,
		SKU:        candle.SKU + "-STD",
		Stock:      25,
		OptionsKey: catalog.OptionsKeyFor(nil),
		IsActive:   true,
	}
	if err := m.db.Create(&candleVariant).Error; err != nil {
		return fmt.Errorf("failed to seed variant: %w", err)
	}

	return nil
}
