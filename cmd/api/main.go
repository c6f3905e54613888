package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go-inventory-api/internal/bootstrap"
	"go-inventory-api/internal/cache"
	"go-inventory-api/internal/config"
	"go-inventory-api/internal/events"
	"go-inventory-api/internal/handler"
	"go-inventory-api/internal/middleware"
	"go-inventory-api/internal/repository"
	"go-inventory-api/internal/service"
	"go-inventory-api/internal/ws"
	"go-inventory-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := bootstrap.Logger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database
	db, err := bootstrap.Database(cfg)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	defer bootstrap.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run(ctx)

	notifiers := events.Multi{wsHub}

	// 4. Optional Kafka and Redis
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog.Named("kafka"))
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		zlog.Info("kafka publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var statsCache service.StatsCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zlog.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		c := cache.NewStatsCache(rdb, cfg.Redis.StatsTTL, zlog.Named("cache"))
		statsCache = c
		notifiers = append(notifiers, c)
		zlog.Info("statistics cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	userRepo := repository.NewUserRepo(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	invService := service.NewInventoryService(productRepo, auditRepo, db, notifiers, zlog.Named("inventory"), cfg.Server.UploadDir)
	statsService := service.NewStatisticsService(productRepo, auditRepo, statsCache, zlog.Named("statistics"))
	authService := service.NewAuthService(userRepo, tokens, zlog.Named("auth"))

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "Inventory API",
		BodyLimit: 10 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	handler.Routes{
		Auth:        handler.NewAuthHandler(authService, zlog),
		Inventory:   handler.NewInventoryHandler(invService, zlog),
		Statistics:  handler.NewStatisticsHandler(statsService, zlog),
		Hub:         wsHub,
		RequireAuth: middleware.RequireAuth(authService),
		UploadDir:   cfg.Server.UploadDir,
	}.Register(app)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Error("listen", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
		return
	}
	zlog.Info("server exited")
}
