// routes.go - Route and middleware registration
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/po-scanner/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	Scanner           Processor
	Exporter          Exporter
	ExtractionTimeout time.Duration
	DeleteUploads     bool
	ExtractorEndpoint string
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Scan   ScanHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.ExtractorEndpoint),
		Scan: NewScanHandler(deps.Store, deps.Scanner, deps.Exporter, ScanOptions{
			Timeout:       deps.ExtractionTimeout,
			DeleteUploads: deps.DeleteUploads,
		}),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// The page posts here; keep the path stable.
	e.POST("/upload", handlers.Scan.HandleUpload)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.GET("/results/latest", handlers.Scan.HandleLatestResult)
	apiGroup.GET("/uploads", handlers.Scan.HandleRecentUploads)
	apiGroup.GET("/uploads/:id", handlers.Scan.HandleGetUpload)
}

// MiddlewareOptions selects the optional middleware
type MiddlewareOptions struct {
	RequestLogging bool
	BodyLimit      string
	EnableCORS     bool
	AllowOrigins   string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !opts.RequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.EnableCORS {
		origins := strings.Split(opts.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
