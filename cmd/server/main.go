package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/anuraga/backend/internal/application/cart"
	catalogapp "github.com/anuraga/backend/internal/application/catalog"
	inventoryapp "github.com/anuraga/backend/internal/application/inventory"
	orderingapp "github.com/anuraga/backend/internal/application/ordering"
	paymentapp "github.com/anuraga/backend/internal/application/payment"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/infrastructure/auth"
	"github.com/anuraga/backend/internal/infrastructure/cache"
	"github.com/anuraga/backend/internal/infrastructure/config"
	"github.com/anuraga/backend/internal/infrastructure/event"
	"github.com/anuraga/backend/internal/infrastructure/logger"
	razorpay "github.com/anuraga/backend/internal/infrastructure/payment"
	"github.com/anuraga/backend/internal/infrastructure/persistence"
	"github.com/anuraga/backend/internal/interfaces/http/handler"
	"github.com/anuraga/backend/internal/interfaces/http/middleware"
	"github.com/anuraga/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Transaction scopes
	checkoutScope := persistence.NewGormCheckoutTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)
	paymentScope := persistence.NewGormPaymentTransactionScope(db.DB)

	// Payment gateway adapter
	gateway, err := razorpay.NewRazorpayAdapter(cfg.Gateway)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Idempotency store (redis with in-memory fallback)
	idempotencyStore := cache.NewIdempotencyStore(cfg, log)
	idempotencyCfg := shared.IdempotencyConfig{
		TTL:     cfg.Idempotency.TTL,
		Enabled: true,
	}

	// Application services
	catalogService := catalogapp.NewService(productRepo)
	cartService := cartapp.NewService(cartRepo, productRepo)
	checkoutService := orderingapp.NewCheckoutService(checkoutScope, orderRepo, cartRepo, productRepo)
	inventoryService := inventoryapp.NewService(inventoryScope, ledgerRepo)
	paymentService := paymentapp.NewService(paymentScope, paymentRepo, orderRepo, gateway, idempotencyStore, idempotencyCfg, log)

	// Event bus and lifecycle subscribers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(orderingapp.NewOrderActivityHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	checkoutService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	// JWT validation for API routes
	jwtService := auth.NewJWTService(cfg.JWT)
	authMW := middleware.JWTAuthMiddleware(jwtService)
	adminMW := middleware.RequireAdmin()

	// HTTP handlers
	productHandler := handler.NewProductHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(checkoutService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health endpoint outside API versioning
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Catalog: reads are public, writes are admin-only
	productRoutes := router.NewDomainGroup("catalog", "/products")
	productRoutes.GET("", productHandler.List)
	productRoutes.GET("/:id", productHandler.Get)
	productRoutes.GET("/slug/:slug", productHandler.GetBySlug)
	productRoutes.POST("", authMW, adminMW, productHandler.Create)
	productRoutes.PUT("/:id", authMW, adminMW, productHandler.Update)

	// Cart: always scoped to the authenticated user
	cartRoutes := router.NewDomainGroup("cart", "/cart")
	cartRoutes.Use(authMW)
	cartRoutes.GET("", cartHandler.Get)
	cartRoutes.POST("/lines", cartHandler.AddLine)
	cartRoutes.PUT("/lines/:lineId", cartHandler.UpdateLine)
	cartRoutes.DELETE("/lines/:lineId", cartHandler.RemoveLine)
	cartRoutes.DELETE("/clear", cartHandler.Clear)
	cartRoutes.POST("/sync", cartHandler.Sync)
	cartRoutes.GET("/snapshot", cartHandler.Snapshot)

	// Orders
	orderRoutes := router.NewDomainGroup("ordering", "/orders")
	orderRoutes.Use(authMW)
	orderRoutes.POST("/checkout", orderHandler.Checkout)
	orderRoutes.GET("", orderHandler.ListMine)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.GET("/:id/payments", paymentHandler.ListByOrder)

	// Payments
	paymentRoutes := router.NewDomainGroup("payment", "/payments")
	paymentRoutes.Use(authMW)
	paymentRoutes.POST("/intent", paymentHandler.CreateIntent)
	paymentRoutes.POST("/verify", paymentHandler.Verify)

	// Administration
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(authMW, adminMW)
	adminRoutes.GET("/orders", orderHandler.ListAll)
	adminRoutes.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	adminRoutes.POST("/inventory/adjust", inventoryHandler.Adjust)
	adminRoutes.POST("/inventory/bulk-set", inventoryHandler.BulkSet)
	adminRoutes.GET("/inventory/history", inventoryHandler.History)
	adminRoutes.GET("/payments", paymentHandler.ListPaid)

	// System probes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(productRoutes).
		Register(cartRoutes).
		Register(orderRoutes).
		Register(paymentRoutes).
		Register(adminRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
