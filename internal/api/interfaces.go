// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/po-scanner/backend/internal/models"
)

// ScanHandler handles document uploads and their extraction results
type ScanHandler interface {
	HandleUpload(c echo.Context) error
	HandleLatestResult(c echo.Context) error
	HandleRecentUploads(c echo.Context) error
	HandleGetUpload(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Processor extracts a purchase order from a stored document
type Processor interface {
	Process(ctx context.Context, path string) (*models.PurchaseOrder, error)
}

// Exporter persists an extracted purchase order
type Exporter interface {
	Export(ctx context.Context, po *models.PurchaseOrder) error
}
