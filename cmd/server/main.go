package main

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/werkyrie/shopdesk/internal/config"
	"github.com/werkyrie/shopdesk/internal/database"
	"github.com/werkyrie/shopdesk/internal/handler"
	"github.com/werkyrie/shopdesk/internal/jwtutil"
	"github.com/werkyrie/shopdesk/internal/logger"
	"github.com/werkyrie/shopdesk/internal/metrics"
	"github.com/werkyrie/shopdesk/internal/middleware"
	"github.com/werkyrie/shopdesk/internal/mirror"
	"github.com/werkyrie/shopdesk/internal/model"
	"github.com/werkyrie/shopdesk/internal/store"
)

func main() {
	// Load configuration
	conf, err := config.Load("shopdesk")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Starting shopdesk", conf.LogConfig()...)

	// Initialize the document store and the users table
	var docStore store.Store
	var authHandler *handler.AuthHandler
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	switch conf.Store.Driver {
	case "memory":
		// Volatile driver for local development; users cannot log in without
		// a database, so auth routes are not registered.
		docStore = store.NewMemoryStore()
		log.Warn("Using in-memory store; data will not survive a restart")
	default:
		db, err := database.InitDB(&conf.DB)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if err := database.MigrateModels(db, &model.User{}); err != nil {
			log.Fatal("Failed to migrate database models", zap.Error(err))
		}
		pgStore := store.NewPostgresStore(db, log, conf.Store.ResyncInterval)
		if err := pgStore.Migrate(); err != nil {
			log.Fatal("Failed to migrate document store", zap.Error(err))
		}
		docStore = pgStore
		if err := handler.SeedAdmin(db, conf.Admin.Email, conf.Admin.Password, log); err != nil {
			log.Fatal("Failed to seed admin user", zap.Error(err))
		}
		authHandler = handler.NewAuthHandler(db, jwt)
	}

	// Start the collection mirrors
	shops := mirror.NewShops(docStore, log)
	orders := mirror.NewOrders(docStore, log)
	advanceOrders := mirror.NewAdvanceOrders(docStore, log)
	shops.Start()
	orders.Start()
	advanceOrders.Start()
	defer shops.Stop()
	defer orders.Stop()
	defer advanceOrders.Stop()

	// Initialize HTTP metrics
	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	// Initialize Echo framework
	e := echo.New()
	e.Validator = handler.NewValidator()

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	// Metrics and health endpoints
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	if authHandler != nil {
		e.POST("/auth/login", authHandler.Login)
		e.POST("/auth/register", authHandler.Register)
		e.GET("/auth/me", authHandler.Me, middleware.JWTAuthMiddleware(jwt))
	}

	shopHandler := handler.NewShopHandler(shops, conf.View.PerPage)
	orderHandler := handler.NewOrderHandler(orders, shops, conf.View.PerPage)
	advanceOrderHandler := handler.NewAdvanceOrderHandler(advanceOrders, conf.View.PerPage)

	// Secured routes - reads for any authenticated user, writes for admins
	api := e.Group("", middleware.JWTAuthMiddleware(jwt))
	admin := middleware.RequireRole(model.RoleAdmin)

	api.GET("/shops", shopHandler.List)
	api.POST("/shops", shopHandler.Create, admin)
	api.PUT("/shops/:id", shopHandler.Update, admin)
	api.DELETE("/shops/:id", shopHandler.Delete, admin)
	api.POST("/shops/batch/delete", shopHandler.BatchDelete, admin)
	api.POST("/shops/batch/status", shopHandler.BatchStatus, admin)
	api.POST("/shops/batch/balance", shopHandler.BatchBalance, admin)
	api.POST("/shops/batch/credit-score", shopHandler.BatchCreditScore, admin)
	api.POST("/shops/batch/tags", shopHandler.BatchTags, admin)
	api.POST("/shops/import", shopHandler.Import, admin)
	api.POST("/shops/export", shopHandler.Export)

	api.GET("/orders", orderHandler.List)
	api.POST("/orders", orderHandler.Create, admin)
	api.POST("/orders/bulk", orderHandler.CreateBulk, admin)
	api.DELETE("/orders/:id", orderHandler.Delete, admin)
	api.POST("/orders/batch/delete", orderHandler.BatchDelete, admin)
	api.POST("/orders/export", orderHandler.Export)

	api.GET("/advance-orders", advanceOrderHandler.List)
	api.POST("/advance-orders", advanceOrderHandler.Create, admin)
	api.DELETE("/advance-orders/:id", advanceOrderHandler.Delete, admin)
	api.POST("/advance-orders/batch/delete", advanceOrderHandler.BatchDelete, admin)

	// Start server
	log.Info("Starting shopdesk on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
