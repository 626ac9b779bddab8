// handlers_upload.go - Document upload and extraction handlers
package api

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/po-scanner/backend/internal/models"
	"github.com/po-scanner/backend/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
	"k8s.io/klog/v2"
)

const (
	fileField     = "file"
	recentUploads = 20
)

// ScanOptions tunes upload processing.
type ScanOptions struct {
	// Timeout bounds one extraction. Zero leaves it bound only by the
	// request context.
	Timeout time.Duration
	// DeleteUploads removes the stored document once it has been scanned.
	DeleteUploads bool
}

// ScanHandlerImpl implements the ScanHandler interface
type ScanHandlerImpl struct {
	store    storage.Store
	scanner  Processor
	exporter Exporter
	opts     ScanOptions

	mu     sync.RWMutex
	latest *models.UploadResponse
}

// NewScanHandler creates a new scan handler
func NewScanHandler(store storage.Store, scanner Processor, exporter Exporter, opts ScanOptions) *ScanHandlerImpl {
	return &ScanHandlerImpl{
		store:    store,
		scanner:  scanner,
		exporter: exporter,
		opts:     opts,
	}
}

// HandleUpload accepts a multipart document, extracts the purchase order and
// returns its summary.
func (h *ScanHandlerImpl) HandleUpload(c echo.Context) error {
	file, err := c.FormFile(fileField)
	if err != nil {
		// An empty file input is submitted as a plain form value.
		if form, ferr := c.MultipartForm(); ferr == nil {
			if _, ok := form.Value[fileField]; ok {
				return NewBadRequestError("No file selected", nil)
			}
		}
		return NewBadRequestError("No file uploaded", err)
	}
	if file.Filename == "" {
		return NewBadRequestError("No file selected", nil)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	if h.opts.DeleteUploads {
		defer h.cleanup(info.ID)
	}

	path, err := h.store.GetFilePath(info.ID)
	if err != nil {
		return NewInternalError("failed to locate uploaded file", err)
	}

	ctx := c.Request().Context()
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	po, err := h.scanner.Process(ctx, path)
	if err != nil {
		h.markStatus(info.ID, models.FileStatusFailed)
		return NewExtractionError("Failed to extract purchase order", err)
	}

	if err := h.exporter.Export(ctx, po); err != nil {
		h.markStatus(info.ID, models.FileStatusFailed)
		return NewInternalError("Failed to save extracted data", err)
	}
	h.markStatus(info.ID, models.FileStatusScanned)

	resp := models.NewUploadResponse(po)
	h.mu.Lock()
	h.latest = resp
	h.mu.Unlock()

	klog.Infof("scanned %s (%s): po=%q items=%d", info.Name, info.ID, po.PONumber, len(po.Items))
	return c.JSON(http.StatusOK, resp)
}

// HandleLatestResult returns the most recent extraction as JSON, or as
// MessagePack when format=msgpack is requested.
func (h *ScanHandlerImpl) HandleLatestResult(c echo.Context) error {
	h.mu.RLock()
	resp := h.latest
	h.mu.RUnlock()

	if resp == nil {
		return NewNotFoundError("result", "latest")
	}

	if c.QueryParam("format") == "msgpack" {
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(resp); err != nil {
			return NewInternalError("failed to encode result", err)
		}
		return c.Blob(http.StatusOK, "application/msgpack", buf.Bytes())
	}

	return c.JSON(http.StatusOK, resp)
}

// HandleRecentUploads lists the most recently uploaded documents
func (h *ScanHandlerImpl) HandleRecentUploads(c echo.Context) error {
	files, err := h.store.List(recentUploads)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	if files == nil {
		files = []*models.FileInfo{}
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetUpload returns the metadata and scan status of one upload
func (h *ScanHandlerImpl) HandleGetUpload(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("upload", id)
	}
	return c.JSON(http.StatusOK, info)
}

func (h *ScanHandlerImpl) cleanup(id string) {
	if err := h.store.Delete(id); err != nil {
		klog.Warningf("deleting upload %s: %v", id, err)
		return
	}
	klog.V(2).Infof("deleted upload %s", id)
}

func (h *ScanHandlerImpl) markStatus(id, status string) {
	if err := h.store.SetStatus(id, status); err != nil {
		klog.Warningf("updating status of %s: %v", id, err)
	}
}
