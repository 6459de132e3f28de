package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipt-print-api/internal/config"
)

var (
	devOrigins     = []string{"http://localhost:3000", "http://localhost:3001", "http://127.0.0.1:3000"}
	defaultMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultHeaders = []string{"Accept", "Content-Type", "X-Request-ID", "Origin"}

	// the POS page cannot print without these
	requiredHeaders = []string{"Authorization", IdempotencyKeyHeader}
)

// CORSMiddleware lets the POS web app, served from another origin, call the print API
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg *config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID", "X-Idempotency-Replayed", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case len(c.AllowOrigins) == 0:
		c.AllowOrigins = devOrigins
	case slices.Contains(c.AllowOrigins, "*"):
		// credentials cannot be combined with a wildcard origin
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	if len(c.AllowMethods) == 0 {
		c.AllowMethods = defaultMethods
	}
	if len(c.AllowHeaders) == 0 {
		c.AllowHeaders = slices.Clone(defaultHeaders)
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(c.AllowHeaders, h) {
			c.AllowHeaders = append(c.AllowHeaders, h)
		}
	}
	return c
}
