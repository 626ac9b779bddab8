package extractor

import (
	"context"
	"fmt"

	"github.com/po-scanner/backend/internal/models"
	"k8s.io/klog/v2"
)

// Scanner turns a purchase order document into a models.PurchaseOrder.
type Scanner struct {
	backend Backend
	schema  Schema
	fields  []string
}

// NewScanner creates a scanner using the embedded schema.
func NewScanner(backend Backend) (*Scanner, error) {
	schema, err := LoadSchema()
	if err != nil {
		return nil, err
	}
	return &Scanner{
		backend: backend,
		schema:  schema,
		fields:  FallbackFields,
	}, nil
}

// Process extracts the order in path. Schema extraction is tried first; any
// failure there falls back to field extraction.
func (s *Scanner) Process(ctx context.Context, path string) (*models.PurchaseOrder, error) {
	klog.Infof("processing %s", path)

	data, err := s.backend.ExtractStructured(ctx, path, s.schema)
	if err == nil {
		po, convErr := fromStructured(data)
		if convErr == nil {
			klog.V(2).Infof("schema extraction succeeded for %s", path)
			return po, nil
		}
		err = convErr
	}

	klog.Warningf("schema extraction failed for %s: %v, trying field extraction", path, err)
	if ctx.Err() != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, ctx.Err())
	}

	data, ferr := s.backend.ExtractFields(ctx, path, s.fields)
	if ferr != nil {
		return nil, fmt.Errorf("extracting %s: schema: %v; fields: %w", path, err, ferr)
	}
	po, ferr := fromFields(data)
	if ferr != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, ferr)
	}
	return po, nil
}
