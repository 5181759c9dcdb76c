package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	appcache "github.com/joseluis45re534-cmyk/dentalebook/internal/cache"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/catalog"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/checkout"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/config"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/database"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/handlers"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/middleware"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/orders"
	"github.com/joseluis45re534-cmyk/dentalebook/internal/payments"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureAnalyticsIndexes(db); err != nil {
		log.Printf("analytics index warning: %v", err)
	}

	store := catalog.NewStore(db)
	ledger := orders.NewLedger(db)
	processor := payments.NewClient(
		config.AppEnv.StripeAPIBase,
		config.AppEnv.StripeSecretKey,
		config.AppEnv.ProcessorTimeout,
	)
	checkoutService := checkout.NewService(
		store,
		ledger,
		processor,
		config.AppEnv.Currency,
		config.AppEnv.ProcessorTimeout,
	)

	var productCache appcache.Cache
	if config.AppEnv.RedisAddr != "" {
		productCache = appcache.NewRedisCache(config.AppEnv.RedisAddr, "dentalebook")
		log.Println("Redis product cache enabled:", config.AppEnv.RedisAddr)
	}

	r := gin.Default()

	r.GET("/products", handlers.GetProducts(db, productCache, config.AppEnv.ProductCacheTTL))
	r.GET("/products/:id", handlers.GetProduct(store))

	r.POST("/checkout", handlers.CreateCheckout(checkoutService))
	r.POST("/orders/confirm", handlers.ConfirmOrder(checkoutService))
	r.POST("/orders/sync", handlers.SyncOrderContact(checkoutService))
	r.POST("/webhooks/payment", handlers.PaymentWebhook(checkoutService, config.AppEnv.StripeWebhookSecret))

	r.POST("/analytics/track", handlers.TrackEvent(db))

	r.POST("/admin/login", handlers.AdminLogin(
		config.AppEnv.AdminPasswordHash,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
	))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.GET("/orders", handlers.GetOrders(ledger))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(ledger))

		admin.GET("/analytics", handlers.AnalyticsDashboard(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
