// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/interfaces/http/handlers"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	setupAuthRoutes(rg, db, cfg)
	setupUserRoutes(rg, db, cfg)
	setupCatalogRoutes(rg, db, cfg)
	setupCartRoutes(rg, db, redisClient, cfg)
	setupCheckoutRoutes(rg, db, redisClient, cfg)
	setupOrderRoutes(rg, db, redisClient, cfg)
	setupAdminRoutes(rg, db, redisClient, cfg)
}

func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

func setupUserRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	addressHandler := handlers.NewAddressHandler(db, cfg)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", addressHandler.ListAddresses)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	catalogHandler := handlers.NewCatalogHandler(db, cfg)

	catalog := rg.Group("/catalog")
	{
		catalog.GET("/products", catalogHandler.GetProducts)
		catalog.GET("/products/:id", catalogHandler.GetProduct)
		catalog.GET("/products/slug/:slug", catalogHandler.GetProductBySlug)
		catalog.POST("/products/:id/resolve", catalogHandler.ResolveVariant)
		catalog.GET("/attributes", catalogHandler.GetAttributes)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	// Carts work for guests and signed-in customers alike
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:variantId", cartHandler.UpdateItem)
		cart.DELETE("/items/:variantId", cartHandler.RemoveItem)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/merge", middleware.AuthMiddleware(cfg), cartHandler.MergeCart)
	}
}

func setupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkout.POST("/preview", checkoutHandler.Preview)
		checkout.POST("", checkoutHandler.PlaceOrder)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListMyOrders)
		orders.GET("/:id", orderHandler.GetMyOrder)
		orders.GET("/number/:number", orderHandler.GetMyOrderByNumber)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	adminCatalogHandler := handlers.NewAdminCatalogHandler(db, cfg)
	adminOrderHandler := handlers.NewAdminOrderHandler(db, redisClient, cfg)
	settingsHandler := handlers.NewSettingsHandler(db, redisClient, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		catalog := admin.Group("/catalog")
		{
			catalog.GET("/products", adminCatalogHandler.ListProducts)
			catalog.POST("/products", adminCatalogHandler.CreateProduct)
			catalog.POST("/products/:id/variants", adminCatalogHandler.CreateVariant)
			catalog.PUT("/variants/:id/stock", adminCatalogHandler.SetVariantStock)
			catalog.GET("/variants/:id/movements", adminCatalogHandler.GetStockMovements)
			catalog.POST("/attributes", adminCatalogHandler.CreateAttribute)
			catalog.POST("/attributes/:id/values", adminCatalogHandler.AddAttributeValue)
			catalog.DELETE("/attributes/:id", adminCatalogHandler.DeleteAttribute)
			catalog.DELETE("/values/:id", adminCatalogHandler.DeleteAttributeValue)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", adminOrderHandler.ListOrders)
			orders.GET("/:id", adminOrderHandler.GetOrder)
			orders.PUT("/:id/status", adminOrderHandler.UpdateStatus)
			orders.PUT("/:id/cancel", adminOrderHandler.CancelOrder)
			orders.PUT("/:id/paid", adminOrderHandler.MarkPaid)
			orders.GET("/:id/invoice", adminOrderHandler.DownloadInvoice)
		}

		admin.GET("/settings", settingsHandler.GetSettings)
		admin.PUT("/settings", settingsHandler.UpdateSettings)
	}
}
