package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-asso-stock/internal/handler"
	"go-asso-stock/internal/middleware"
	"go-asso-stock/internal/repository"
	"go-asso-stock/internal/service"
	"go-asso-stock/internal/ws"
	"go-asso-stock/pkg/config"
	"go-asso-stock/pkg/database"
	"go-asso-stock/pkg/jwt"
	"go-asso-stock/pkg/logger"
	"go-asso-stock/pkg/metrics"
	"go-asso-stock/pkg/storage"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config & logging
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.Env, "asso-stock-api")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 2. Database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.DB.Driver))

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Prefix, registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. WebSocket hub
	wsHub := ws.NewHub(log.Named("ws"))

	// 5. Dependency Injection (Wiring Layers)
	tenantRepo := repository.NewTenantRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	dashboardRepo := repository.NewDashboardRepo(db)

	tenantService := service.NewTenantService(tenantRepo, m, log.Named("tenant"))
	catalogService := service.NewCatalogService(db, categoryRepo, productRepo, cfg.Catalog.CategoryDeletePolicy, m, log.Named("catalog"))
	ledgerService := service.NewLedgerService(db, ledgerRepo, productRepo, wsHub, m, log.Named("ledger"))
	dashService := service.NewDashboardService(dashboardRepo, productRepo, ledgerRepo,
		cfg.Catalog.RecentTransactionsLimit, cfg.Catalog.DistributionTopN, m, log.Named("dashboard"))

	images := storage.NewLocal(cfg.Storage.UploadDir)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpirationHours)

	handlers := &handler.Handlers{
		Tenant:    handler.NewTenantHandler(tenantService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Dashboard: handler.NewDashboardHandler(dashService),
		Upload:    handler.NewUploadHandler(images, cfg.Storage.MaxBytes, log.Named("uploads")),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Asso Stock v1.0",
		BodyLimit:    cfg.Storage.MaxBytes + 1024*1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log.Named("http"), m))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	app.Static(storage.PublicPrefix, images.Dir())

	// 7. Routes
	requireTenant := middleware.RequireTenant(tokens, tenantService, log.Named("auth"))
	api := app.Group("/api/v1", requireTenant)
	handler.RegisterRoutes(api, handlers)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, requireTenant)
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		tenantID, _ := c.Locals(middleware.LocalTenantID).(uuid.UUID)
		client := &ws.Client{Conn: c, TenantID: tenantID}

		if !wsHub.Join(client) {
			return
		}
		defer wsHub.Leave(client)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Serve until a signal arrives, then shut down gracefully
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("listening", zap.String("port", cfg.Server.Port))
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server exited")
	return nil
}
