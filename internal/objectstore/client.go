// Package objectstore mirrors scan outputs to S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Client uploads artifacts into a single bucket.
type Client struct {
	client *minio.Client
	bucket string
	prefix string
	tracer trace.Tracer

	// ready is set once the bucket is known to exist. Failed checks are
	// retried on the next Publish.
	mu    sync.Mutex
	ready bool
}

// Options configures a Client.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
	Region    string
}

// NewClient creates an object store client. No request is made until the
// first Publish.
func NewClient(opts Options) (*Client, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}

	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Client{
		client: mc,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		tracer: otel.Tracer("objectstore-client"),
	}, nil
}

// ensureBucket makes sure the bucket exists. Only success is remembered.
func (c *Client) ensureBucket(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "objectstore_ensure_bucket")
	defer span.End()
	span.SetAttributes(attribute.String("objectstore.bucket", c.bucket))

	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	c.ready = true
	return nil
}

// Publish implements export.Publisher.
func (c *Client) Publish(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, span := c.tracer.Start(ctx, "objectstore_publish")
	defer span.End()

	objectKey := c.objectKey(key)
	span.SetAttributes(
		attribute.String("objectstore.bucket", c.bucket),
		attribute.String("objectstore.key", objectKey),
		attribute.Int("objectstore.size", len(data)),
	)

	if err := c.ensureBucket(ctx); err != nil {
		return err
	}

	_, err := c.client.PutObject(ctx, c.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}
	return nil
}

func (c *Client) objectKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return path.Join(c.prefix, key)
}
