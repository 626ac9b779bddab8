package export

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/po-scanner/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *models.PurchaseOrder {
	po := models.NewPurchaseOrder()
	po.InvoiceNumber = "INV-1"
	po.PONumber = "PO-42"
	po.PODate = "2024-03-01"
	po.Vendor = models.VendorDetails{Name: "Café & Co", GSTNumber: "29ABC"}
	po.Items = []models.LineItem{
		{ItemName: "Bolt", HSNCode: "7318", Quantity: 10, UnitPrice: 2.5, GSTRate: 18, TotalAmount: 29.5},
		{ItemName: "Nut, hex", Quantity: 3, UnitPrice: 1},
	}
	po.Subtotal = 28
	po.GrandTotal = 33.04
	return po
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, data []byte, contentType string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key+"|"+contentType)
	return p.err
}

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON(sampleOrder())
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "{\n  \"invoice_number\": \"INV-1\""), s)
	assert.Contains(t, s, `"name": "Café & Co"`)
	assert.Contains(t, s, `"buyer": {`)
	assert.False(t, strings.HasSuffix(s, "\n"))
}

func TestEncodeCSV(t *testing.T) {
	data, err := EncodeCSV(sampleOrder())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"INV-1", "PO-42", "2024-03-01", "Café & Co", "7318", "Bolt", "10", "2.5", "18", "29.5"}, rows[1])
	assert.Equal(t, "Nut, hex", rows[2][5])
}

func TestEncodeCSV_NoItems(t *testing.T) {
	data, err := EncodeCSV(models.NewPurchaseOrder())
	require.NoError(t, err)
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", string(data))
}

func TestExporter_Export(t *testing.T) {
	dir := t.TempDir()
	pub := &recordingPublisher{}

	require.NoError(t, NewExporter(dir, pub).Export(context.Background(), sampleOrder()))

	for _, name := range []string{JSONFile, CSVFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	assert.Equal(t, []string{JSONFile + "|application/json", CSVFile + "|text/csv"}, pub.keys)
}

func TestExporter_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bucket gone")}
	assert.NoError(t, NewExporter(t.TempDir(), pub).Export(context.Background(), sampleOrder()))
}

func TestExporter_MissingDirectory(t *testing.T) {
	err := NewExporter(filepath.Join(t.TempDir(), "nope"), nil).Export(context.Background(), sampleOrder())
	assert.Error(t, err)
}
