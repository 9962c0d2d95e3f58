package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/export"
	"go-pos-inventory/internal/handler"
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/database"
	applog "go-pos-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := applog.New(cfg.Logging.Level, cfg.Logging.Format)

	// 2. Setup Database
	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}
	log.WithField("driver", cfg.Database.Driver).Info("database ready")

	// 3. Barcode cache (optional)
	var index cache.BarcodeIndex = cache.Noop{}
	if cfg.Redis.CacheEnabled() {
		client, err := cache.Connect(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, barcode cache disabled")
		} else {
			defer client.Close()
			index = cache.NewRedisIndex(client, cfg.Redis.CacheTTL, log)
			log.WithField("addr", cfg.Redis.Addr).Info("barcode cache enabled")
		}
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)

	productService := service.NewProductService(db, productRepo, movementRepo, index, wsHub, log)
	invService := service.NewInventoryService(db, productRepo, movementRepo, wsHub, log)
	reportService := service.NewReportService(db, productRepo, movementRepo, export.NewFileExporter(cfg.Server.ExportsDir), log)

	productHandler := handler.NewProductHandler(productService)
	invHandler := handler.NewInventoryHandler(invService)
	reportHandler := handler.NewReportHandler(reportService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "POS Inventory v1.0",
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.Origins(), ","),
	}))
	app.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	// 7. Routes
	handler.RegisterRoutes(app, productHandler, invHandler, reportHandler)
	app.Static("/exports", cfg.Server.ExportsDir)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		log.WithField("port", cfg.Server.Port).Info("listening")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	wsHub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}
