package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/application/service"
	"github.com/sangkips/receipt-print-api/internal/config"
	domainRepo "github.com/sangkips/receipt-print-api/internal/domain/repository"
	"github.com/sangkips/receipt-print-api/internal/infrastructure/database"
	"github.com/sangkips/receipt-print-api/internal/infrastructure/events"
	"github.com/sangkips/receipt-print-api/internal/infrastructure/repository"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/handler"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/middleware"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/routes"
	"github.com/sangkips/receipt-print-api/pkg/printer"
	"github.com/sangkips/receipt-print-api/pkg/receipt"
	"github.com/sangkips/receipt-print-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg, cfgErr := config.Load()

	logger, err := newLogger(cfg.App.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Info("No .env file loaded, using environment", zap.Error(cfgErr))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Seed default printer
	if err := database.SeedDefaultPrinter(ctx, db, &cfg.Printer, logger); err != nil {
		logger.Warn("Failed to seed default printer", zap.Error(err))
	}

	// Initialize repositories
	printerRepo := repository.NewPrinterRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	registry := service.NewPrinterRegistry(printerRepo, logger)
	if err := registry.Init(ctx); err != nil {
		logger.Fatal("Failed to load printers", zap.Error(err))
	}

	// Transports, in any order; the orchestrator applies the fallback priority
	launcher := printer.NewBrowserLauncher()
	orchestrator := printer.NewOrchestrator(registry, logger.Named("printer"), printer.Config{
		AttemptTimeout: cfg.Printer.AttemptTimeout,
		Encoder:        printer.EncoderProfile{FeedLines: cfg.Printer.FeedLines, AutoCut: cfg.Printer.AutoCut},
		Receipt: receipt.Options{
			Width:    cfg.Receipt.Width,
			Currency: cfg.Receipt.Currency,
			Taxes:    receipt.TaxRates{CGST: cfg.Receipt.CGSTRate, SGST: cfg.Receipt.SGSTRate},
			Footer:   cfg.Receipt.Footer,
		},
		Business: receipt.BusinessProfile{
			Name:      cfg.Business.Name,
			Address:   cfg.Business.Address,
			Phone:     cfg.Business.Phone,
			GSTNumber: cfg.Business.GSTNumber,
		},
	},
		printer.NewDirectTransport(printer.DirectConfig{Timeout: cfg.Printer.NetworkTimeout, CopyDelay: cfg.Printer.CopyDelay}),
		printer.NewUSBTransport(printer.GousbOpener{}, cfg.Printer.CopyDelay),
		printer.NewFrameTransport(launcher, printer.FrameConfig{LoadTimeout: cfg.Printer.LoadTimeout, SettleDelay: cfg.Printer.SettleDelay}),
		printer.NewSpoolerTransport(cfg.Printer.SpoolerCommand, nil),
		printer.NewDialogTransport(launcher, cfg.Printer.SettleDelay),
	)

	// Print events
	hub := events.NewHub(logger.Named("events"), cfg.CORS.AllowedOrigins)
	orchestrator.Subscribe(hub.Publish)
	go hub.Run(ctx)

	// Initialize services
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authService := service.NewTerminalAuthService(cfg.Terminal.PairingCodeHash, jwtManager, logger)
	printerService := service.NewPrinterService(orchestrator, registry, logger,
		printer.USBDiscoverer{},
		printer.NewMDNSDiscoverer(cfg.Printer.DiscoveryTimeout),
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Printer:  handler.NewPrinterHandler(printerService, hub, logger),
		Printers: handler.NewPrintersHandler(registry, logger),
	}

	rateLimiter := middleware.NewTerminalRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Hub:             hub,
		Logger:          logger,
	})

	go cleanupIdempotencyKeys(ctx, idempotencyRepo, logger)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	if cfg.Printer.AnnounceMDNS {
		if n, err := strconv.Atoi(port); err == nil {
			if withdraw, err := events.Announce(cfg.App.Name, n, logger); err != nil {
				logger.Warn("mDNS announcement failed", zap.Error(err))
			} else {
				defer withdraw()
			}
		}
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("service", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := registry.Persist(shutdownCtx); err != nil {
		logger.Error("Failed to save printers", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// cleanupIdempotencyKeys removes expired keys every hour
func cleanupIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("Failed to delete expired idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("Deleted expired idempotency keys", zap.Int64("count", n))
			}
		}
	}
}
