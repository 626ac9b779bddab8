// Package export writes scanned purchase orders to the output directory.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/po-scanner/backend/internal/models"
	"k8s.io/klog/v2"
)

// Output file names inside the output directory. Each scan overwrites them.
const (
	JSONFile = "extracted_data.json"
	CSVFile  = "extracted_data.csv"
)

var csvHeader = []string{
	"Invoice Number", "PO Number", "PO Date", "Vendor Name",
	"HSN Code", "Item Name", "Quantity", "Unit Price",
	"GST Rate", "Total Amount",
}

// Publisher mirrors an output artifact to remote storage.
type Publisher interface {
	Publish(ctx context.Context, key string, data []byte, contentType string) error
}

// Exporter writes the JSON and CSV renditions of an order.
type Exporter struct {
	outputDir string
	publisher Publisher
}

// NewExporter creates an exporter. publisher may be nil.
func NewExporter(outputDir string, publisher Publisher) *Exporter {
	return &Exporter{outputDir: outputDir, publisher: publisher}
}

// Export writes both files and publishes them when a publisher is set.
// Publishing failures are logged, not returned.
func (e *Exporter) Export(ctx context.Context, po *models.PurchaseOrder) error {
	jsonData, err := EncodeJSON(po)
	if err != nil {
		return err
	}
	csvData, err := EncodeCSV(po)
	if err != nil {
		return err
	}

	artifacts := []struct {
		name        string
		data        []byte
		contentType string
	}{
		{JSONFile, jsonData, "application/json"},
		{CSVFile, csvData, "text/csv"},
	}

	for _, a := range artifacts {
		path := filepath.Join(e.outputDir, a.name)
		if err := os.WriteFile(path, a.data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", a.name, err)
		}
		klog.Infof("saved to: %s", path)
	}

	if e.publisher == nil {
		return nil
	}
	for _, a := range artifacts {
		if err := e.publisher.Publish(ctx, a.name, a.data, a.contentType); err != nil {
			klog.Errorf("publishing %s: %v", a.name, err)
		}
	}
	return nil
}

// EncodeJSON renders the full order with two-space indentation and without
// HTML or non-ASCII escaping.
func EncodeJSON(po *models.PurchaseOrder) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(po); err != nil {
		return nil, fmt.Errorf("encoding order: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeCSV renders one row per line item, repeating the order header fields.
func EncodeCSV(po *models.PurchaseOrder) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, item := range po.Items {
		row := []string{
			po.InvoiceNumber,
			po.PONumber,
			po.PODate,
			po.Vendor.Name,
			item.HSNCode,
			item.ItemName,
			formatNumber(item.Quantity),
			formatNumber(item.UnitPrice),
			formatNumber(item.GSTRate),
			formatNumber(item.TotalAmount),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
