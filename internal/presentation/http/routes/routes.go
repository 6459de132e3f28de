package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/receipt-print-api/internal/config"
	domainRepo "github.com/sangkips/receipt-print-api/internal/domain/repository"
	"github.com/sangkips/receipt-print-api/internal/infrastructure/events"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/handler"
	"github.com/sangkips/receipt-print-api/internal/presentation/http/middleware"
	"github.com/sangkips/receipt-print-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Printer  *handler.PrinterHandler
	Printers *handler.PrintersHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.TerminalRateLimiter
	Hub             *events.Hub
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.Hub != nil {
			body["event_clients"] = deps.Hub.Clients()
		}
		if deps.RateLimiter != nil {
			body["rate_limit"] = deps.RateLimiter.Stats()
		}
		c.JSON(200, body)
	})

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		public := v1.Group("")
		if deps.RateLimiter != nil {
			public.Use(deps.RateLimiter.Middleware())
		}
		public.POST("/auth/terminal", h.Auth.PairTerminal)

		// Protected routes (paired terminals only)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerPrinterRoutes(protected, h, deps)
		registerPrintersRoutes(protected, h)
	}

	return router
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	p := protected.Group("/printer")
	{
		p.GET("/status", h.Printer.GetStatus)
		p.POST("/test", h.Printer.TestPrint)
		p.POST("/receipt", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Printer.PrintReceipt)
		p.POST("/preview", h.Printer.Preview)
		p.GET("/events", h.Printer.Events)
	}
}

func registerPrintersRoutes(protected *gin.RouterGroup, h *Handlers) {
	printers := protected.Group("/printers")
	{
		printers.GET("", h.Printers.List)
		printers.POST("", h.Printers.Create)
		printers.GET("/discover", h.Printer.Discover)
		printers.PUT("/:id", h.Printers.Update)
		printers.DELETE("/:id", h.Printers.Delete)
		printers.POST("/:id/default", h.Printers.SetDefault)
	}
}
