// mocks.go - Test doubles for the scan pipeline
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/po-scanner/backend/internal/models"
)

// MockStorage implements storage.Store in memory. GetFilePath materialises
// the file in a temp directory so processors can read it.
type MockStorage struct {
	mu       sync.RWMutex
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	dir      string
	counter  int

	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewMockStorage creates a new mock storage
func NewMockStorage(dir string) *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
		dir:      dir,
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	id := fmt.Sprintf("test-%d", m.counter)
	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now().Add(time.Duration(m.counter) * time.Millisecond),
		Status:     models.FileStatusUploaded,
	}
	m.files[id] = info
	m.fileData[id] = data
	c := *info
	return &c, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	c := *info
	return &c, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileInfo
	for _, f := range m.files {
		c := *f
		files = append(files, &c)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].UploadedAt.After(files[j].UploadedAt) })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return errors.New("file not found")
	}
	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	data, ok := m.fileData[id]
	m.mu.RUnlock()
	if !ok {
		return "", errors.New("file not found")
	}

	path := filepath.Join(m.dir, id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (m *MockStorage) SetStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return errors.New("file not found")
	}
	info.Status = status
	return nil
}

// Data returns the stored bytes of id.
func (m *MockStorage) Data(id string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fileData[id]
}

// MockScanner returns a fixed order or error and records the paths it saw.
type MockScanner struct {
	mu    sync.Mutex
	Order *models.PurchaseOrder
	Err   error
	Paths []string
}

func (s *MockScanner) Process(ctx context.Context, path string) (*models.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Paths = append(s.Paths, path)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Order, nil
}

// MockExporter records exported orders.
type MockExporter struct {
	mu       sync.Mutex
	Err      error
	Exported []*models.PurchaseOrder
}

func (e *MockExporter) Export(ctx context.Context, po *models.PurchaseOrder) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Exported = append(e.Exported, po)
	return nil
}

// SampleOrder returns a populated purchase order.
func SampleOrder() *models.PurchaseOrder {
	po := models.NewPurchaseOrder()
	po.InvoiceNumber = "INV-7"
	po.PONumber = "PO-2024-001"
	po.PODate = "2024-05-01"
	po.Vendor = models.VendorDetails{
		Name:      "Acme Supplies",
		Address:   "1 Industrial Rd",
		Email:     "orders@acme.test",
		GSTNumber: "29ABCDE1234F1Z5",
	}
	po.Items = []models.LineItem{
		{ItemName: "Bolt M8", HSNCode: "7318", Quantity: 100, UnitPrice: 2.5, GSTRate: 18, TotalAmount: 295},
	}
	po.Subtotal = 250
	po.TotalGST = 45
	po.GrandTotal = 295
	return po
}
