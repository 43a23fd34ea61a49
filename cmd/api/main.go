package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-price-pilot/config"
	"go-price-pilot/internal/handler"
	"go-price-pilot/internal/model"
	"go-price-pilot/internal/pricing"
	"go-price-pilot/internal/repository"
	"go-price-pilot/internal/service"
	"go-price-pilot/internal/ws"
	"go-price-pilot/pkg/database"
	"go-price-pilot/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.LoadEnv()

	log, err := logger.New(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Warn(".env file not found, relying on system env")
	}

	strategy, err := pricing.ParseStrategy(cfg.Pricing.Strategy)
	if err != nil {
		log.Fatal("Invalid pricing configuration", zap.Error(err))
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	// Auto Migrate (use a dedicated migration tool for production schemas)
	if err := db.AutoMigrate(&model.ProductRecord{}); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	done := make(chan struct{})
	go wsHub.Run(done)

	// 4. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db, strategy, log)
	catalogService := service.NewCatalogService(productRepo, strategy, wsHub, log)
	dashService := service.NewDashboardService(catalogService)

	catalogHandler := handler.NewCatalogHandler(catalogService)
	dashHandler := handler.NewDashboardHandler(dashService)

	// 5. Initial load
	catalogService.Load(context.Background())
	log.Info("Catalog ready", zap.String("strategy", string(strategy)), zap.Int("products", len(catalogService.Products())))

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	handler.SetupRoutes(app, catalogHandler, dashHandler, wsHub)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic("Server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	close(done)
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
