package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/cache"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/events"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/handler"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/repository"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/service"
	"github.com/nespinosaoimpa-wq/Olmoind/internal/storage"
	"github.com/nespinosaoimpa-wq/Olmoind/pkg/config"
	"github.com/nespinosaoimpa-wq/Olmoind/pkg/middleware"
	pkgtls "github.com/nespinosaoimpa-wq/Olmoind/pkg/tls"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	dynamoClient, err := repository.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create DynamoDB client:", err)
	}

	productRepo := repository.NewProductRepository(dynamoClient, cfg.ProductTableName)
	saleRepo := repository.NewSaleRepository(dynamoClient, cfg.SalesTableName)
	settingsRepo := repository.NewSettingsRepository(dynamoClient, cfg.SettingsTableName)

	// Events are optional; everything degrades to single-instance behavior
	// without brokers.
	var producer *events.Producer
	var publisher service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.SaleEventsTopic, cfg.SettingsEventsTopic, logger)
		publisher = producer
		defer producer.Close()
	}

	settingsCache := cache.NewSettingsCache()

	catalogService := service.NewCatalogService(productRepo, logger)
	checkoutService := service.NewCheckoutService(productRepo, saleRepo, publisher, logger)
	salesService := service.NewSalesService(saleRepo, logger)
	settingsService := service.NewSettingsService(settingsRepo, settingsCache, publisher, logger)

	if _, err := settingsService.Load(ctx); err != nil {
		logger.Warn("Settings not primed, serving defaults until first read", zap.Error(err))
	}

	var consumer *events.SettingsConsumer
	if len(cfg.KafkaBrokers) > 0 {
		consumer = events.NewSettingsConsumer(cfg.KafkaBrokers, cfg.SettingsEventsTopic, cfg.ConsumerGroup, settingsService, logger)
		consumer.Start()
		defer consumer.Stop()
	}

	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to create S3 client:", err)
	}
	uploader := storage.NewUploader(s3Client, cfg.AssetBucket, cfg.AssetBaseURL, cfg.AWSRegion, logger)

	productHandler := handler.NewProductHandler(catalogService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	saleHandler := handler.NewSaleHandler(salesService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)
	uploadHandler := handler.NewUploadHandler(uploader, logger)
	authHandler := handler.NewAuthHandler(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTTTL, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "healthy"})
		})

		// Storefront: anonymous reads and checkout.
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/settings", settingsHandler.GetSettings)
		v1.GET("/settings/:key", settingsHandler.GetSetting)
		v1.POST("/checkout", checkoutHandler.Checkout)

		v1.POST("/admin/login", authHandler.Login)

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(cfg.JWTSecret))
		{
			admin.POST("/products", productHandler.CreateProduct)
			admin.PATCH("/products/:id", productHandler.UpdateProductDetails)
			admin.PUT("/products/:id/variants", productHandler.SetVariantStock)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)
			admin.GET("/stats", productHandler.Stats)
			admin.GET("/sales", saleHandler.ListSales)
			admin.GET("/sales/:id", saleHandler.GetSale)
			admin.PATCH("/sales/:id/status", saleHandler.UpdateSaleStatus)
			admin.PUT("/settings/:key", settingsHandler.PutSetting)
			admin.POST("/uploads", uploadHandler.Upload)
		}
	}

	tlsConfig, tlsSource, err := pkgtls.Load(ctx, cfg, logger)
	if err != nil {
		log.Fatal("Failed to load TLS config:", err)
	}
	defer tlsSource.Close()

	srv := &http.Server{
		Addr:      ":" + cfg.Port,
		Handler:   router,
		TLSConfig: tlsConfig,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.Bool("tls", tlsConfig != nil))
		var err error
		if tlsConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	if tlsSource != nil {
		watchCtx, cancelWatch := context.WithCancel(ctx)
		defer cancelWatch()
		go tlsSource.WatchCertificates(watchCtx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}
