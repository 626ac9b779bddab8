package extractor

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

// FallbackFields are requested when schema extraction fails.
var FallbackFields = []string{
	"invoice_number", "po_number", "po_date",
	"vendor_name", "vendor_address", "vendor_gst", "vendor_email",
	"buyer_name", "buyer_address", "buyer_gst",
	"item_name", "hsn_code", "quantity", "rate", "gst_rate",
	"subtotal", "total_gst", "grand_total",
}

// Schema describes the JSON layout requested from the extraction service.
type Schema map[string]any

// LoadSchema parses the embedded purchase order schema.
func LoadSchema() (Schema, error) {
	return ParseSchema(schemaYAML)
}

// ParseSchema parses a YAML schema document.
func ParseSchema(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("parsing schema: empty document")
	}
	return s, nil
}

// JSON encodes the schema for the json_schema form field.
func (s Schema) JSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding schema: %w", err)
	}
	return string(b), nil
}
