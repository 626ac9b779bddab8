package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeS3 accepts HEAD bucket and PUT object requests and records them. The
// first failHeads bucket checks are denied; a missing bucket answers 404
// until it is created with PUT.
type fakeS3 struct {
	mu        sync.Mutex
	requests  []string
	failHeads int
	missing   bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	switch r.Method {
	case http.MethodHead:
		switch {
		case f.failHeads > 0:
			f.failHeads--
			w.WriteHeader(http.StatusForbidden)
		case f.missing:
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	case http.MethodPut:
		if strings.Count(strings.Trim(r.URL.Path, "/"), "/") == 0 {
			f.missing = false
		}
		io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestNewClient_RequiresBucket(t *testing.T) {
	_, err := NewClient(Options{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	c := &Client{bucket: "b"}
	assert.Equal(t, "extracted_data.json", c.objectKey("extracted_data.json"))

	c.prefix = "scans/latest"
	assert.Equal(t, "scans/latest/extracted_data.json", c.objectKey("extracted_data.json"))
}

func TestPublish(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c, err := NewClient(Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secretsecret",
		Bucket:    "po-scanner",
		Prefix:    "outputs",
		Region:    "us-east-1",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Publish(ctx, "extracted_data.json", []byte(`{"po_number":"PO-1"}`), "application/json"))
	require.NoError(t, c.Publish(ctx, "extracted_data.csv", []byte("a,b\n"), "text/csv"))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	heads := 0
	for _, r := range fake.requests {
		if strings.HasPrefix(r, http.MethodHead) {
			heads++
		}
	}
	assert.Equal(t, 1, heads, "bucket is checked once")
	assert.Contains(t, fake.requests, "PUT /po-scanner/outputs/extracted_data.json")
	assert.Contains(t, fake.requests, "PUT /po-scanner/outputs/extracted_data.csv")
}

func (f *fakeS3) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func newTestClient(t *testing.T, fake *fakeS3) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secretsecret",
		Bucket:    "po-scanner",
		Prefix:    "outputs",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return c
}

func TestPublish_RetriesFailedBucketCheck(t *testing.T) {
	fake := &fakeS3{failHeads: 1}
	c := newTestClient(t, fake)
	ctx := context.Background()

	err := c.Publish(ctx, "extracted_data.json", []byte("{}"), "application/json")
	require.Error(t, err)
	assert.Equal(t, 0, fake.count(http.MethodPut), "nothing is uploaded when the bucket check fails")

	require.NoError(t, c.Publish(ctx, "extracted_data.json", []byte("{}"), "application/json"))
	require.NoError(t, c.Publish(ctx, "extracted_data.csv", []byte("a\n"), "text/csv"))

	assert.Equal(t, 2, fake.count(http.MethodHead), "checked again after a failure, then remembered")
	assert.Equal(t, 2, fake.count(http.MethodPut+" /po-scanner/outputs/"))
}

func TestPublish_CreatesMissingBucket(t *testing.T) {
	fake := &fakeS3{missing: true}
	c := newTestClient(t, fake)

	require.NoError(t, c.Publish(context.Background(), "extracted_data.json", []byte("{}"), "application/json"))

	assert.Equal(t, 1, fake.count(http.MethodPut+" /po-scanner/outputs/"))
	assert.GreaterOrEqual(t, fake.count(http.MethodPut), 2, "bucket created before the upload")
}

func TestPublish_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	c := newTestClient(t, &fakeS3{})
	require.NoError(t, c.Publish(context.Background(), "extracted_data.json", []byte("{}"), "application/json"))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.ElementsMatch(t, []string{"objectstore_ensure_bucket", "objectstore_publish"}, names)
}
