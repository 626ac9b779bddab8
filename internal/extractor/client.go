package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"
)

// Backend runs document extraction requests.
type Backend interface {
	ExtractStructured(ctx context.Context, path string, schema Schema) (map[string]any, error)
	ExtractFields(ctx context.Context, path string, fields []string) (map[string]any, error)
}

// Client talks to the document extraction service over HTTP. The document is
// sent as the multipart field "file" to {endpoint}/extract together with
// either a json_schema or a specified_fields form value.
type Client struct {
	http     *resty.Client
	endpoint string
	tracer   trace.Tracer
}

// NewClient creates an extraction client. Without an API key the service may
// refuse requests; a warning is logged.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	hc := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if apiKey != "" {
		hc.SetAuthToken(apiKey)
		klog.Info("extraction client using API key authentication")
	} else {
		klog.Warning("no extraction API key configured, requests are unauthenticated")
	}

	return &Client{
		http:     hc,
		endpoint: strings.TrimRight(endpoint, "/"),
		tracer:   otel.Tracer("po-extractor"),
	}
}

// ExtractStructured asks the service to fill schema from the document.
func (c *Client) ExtractStructured(ctx context.Context, path string, schema Schema) (map[string]any, error) {
	ctx, span := c.tracer.Start(ctx, "extract_structured")
	defer span.End()
	span.SetAttributes(attribute.String("extractor.document", path))

	encoded, err := schema.JSON()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out, err := c.extract(ctx, path, "json_schema", encoded)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// ExtractFields asks the service for a flat set of named fields.
func (c *Client) ExtractFields(ctx context.Context, path string, fields []string) (map[string]any, error) {
	ctx, span := c.tracer.Start(ctx, "extract_fields")
	defer span.End()
	span.SetAttributes(
		attribute.String("extractor.document", path),
		attribute.Int("extractor.fields", len(fields)),
	)

	encoded, err := json.Marshal(fields)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("encoding fields: %w", err)
	}

	out, err := c.extract(ctx, path, "specified_fields", string(encoded))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

func (c *Client) extract(ctx context.Context, path, param, value string) (map[string]any, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("file", path).
		SetFormData(map[string]string{param: value}).
		Post(c.endpoint + "/extract")
	if err != nil {
		return nil, fmt.Errorf("calling extraction service: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var out map[string]any
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}
	if msg, ok := out["error"].(string); ok && msg != "" {
		return nil, fmt.Errorf("extraction service: %s", msg)
	}
	return out, nil
}
