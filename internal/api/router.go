// Package api assembles the HTTP router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/acesastra/ace-portal/internal/api/login"
	"github.com/acesastra/ace-portal/internal/api/middleware"
	"github.com/acesastra/ace-portal/internal/api/site"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker func(ctx context.Context) error

// Options configures the router.
type Options struct {
	Sessions       middleware.SessionResolver
	CookieName     string
	Login          *login.Handler
	Site           *site.Handler
	Health         map[string]HealthChecker
	MetricsPath    string // empty disables the endpoint
	AllowedOrigins []string
	Debug          bool
}

// NewRouter builds the gin engine and wraps it with CORS.
func NewRouter(opts Options, log *logger.Logger) http.Handler {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Session(opts.Sessions, opts.CookieName, log))

	router.GET("/health", healthHandler(opts.Health))
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	opts.Login.RegisterRoutes(router.Group("/auth"))
	opts.Site.RegisterRoutes(router.Group("/api/v1"))

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func healthHandler(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		c.JSON(status, gin.H{
			"status":    http.StatusText(status),
			"checks":    results,
			"timestamp": time.Now().UTC(),
		})
	}
}
