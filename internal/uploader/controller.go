// Package uploader submits a selected document to the scan endpoint and
// reflects the outcome into a status line and a results panel.
package uploader

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"k8s.io/klog/v2"
)

// Status texts shown to the user.
const (
	StatusNoFile    = "⚠️ Please select a PDF file first."
	StatusUploading = "⏳ Uploading and processing..."
	StatusComplete  = "✅ Extraction complete!"
	failurePrefix   = "❌ Error: "
)

const (
	// UploadPath is the scan endpoint relative to the server URL.
	UploadPath = "/upload"
	// FileField is the multipart field carrying the document.
	FileField = "file"
)

// FailureMode selects how transport and parse failures are displayed.
type FailureMode int

const (
	// FailureReported shows transport and parse failures in the status line.
	FailureReported FailureMode = iota
	// FailureBaseline leaves the status at the in-progress text and only
	// returns the error.
	FailureBaseline
)

// Outcome classifies how a submission ended.
type Outcome int

const (
	OutcomeNoFile Outcome = iota
	OutcomeSucceeded
	OutcomeRejected
	OutcomeFailed
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoFile:
		return "no-file"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient sends requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) {
		c.client = resty.NewWithClient(hc)
	}
}

// WithFailureMode overrides the default FailureReported mode.
func WithFailureMode(mode FailureMode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// Controller binds the submit action to the upload endpoint. Submit may be
// called concurrently; only the most recent submission updates the view.
type Controller struct {
	view   View
	client *resty.Client
	url    string
	mode   FailureMode

	seq atomic.Uint64
	mu  sync.Mutex
}

// NewController creates a controller posting to serverURL + UploadPath.
func NewController(serverURL string, view View, opts ...Option) *Controller {
	c := &Controller{
		view:   view,
		client: resty.New(),
		url:    strings.TrimRight(serverURL, "/") + UploadPath,
		mode:   FailureReported,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit uploads the selected file and renders the response. The returned
// error is nil for successful and superseded submissions. Every activation,
// including one with no file selected, supersedes earlier submissions.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	seq := c.seq.Add(1)
	file, ok := c.view.Picker.Selected()
	if !ok {
		if !c.apply(seq, func() { c.view.Status.SetStatus(StatusNoFile) }) {
			return OutcomeSuperseded, nil
		}
		return OutcomeNoFile, nil
	}

	if !c.apply(seq, func() { c.view.Status.SetStatus(StatusUploading) }) {
		return OutcomeSuperseded, nil
	}

	res := c.send(ctx, file)
	return c.render(seq, res)
}

func (c *Controller) send(ctx context.Context, file SelectedFile) Result {
	rc, err := file.Open()
	if err != nil {
		return Result{Err: &TransportError{Op: "reading " + file.Name, Err: err}}
	}
	defer rc.Close()

	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader(FileField, file.Name, rc).
		Post(c.url)
	if err != nil {
		return Result{Err: &TransportError{Op: "POST " + c.url, Err: err}}
	}

	return decodeResult(resp.StatusCode(), resp.Body())
}

func (c *Controller) render(seq uint64, res Result) (Outcome, error) {
	var (
		outcome Outcome
		retErr  error
	)

	applied := c.apply(seq, func() {
		if res.Err != nil {
			outcome, retErr = OutcomeFailed, res.Err
			if c.mode == FailureReported {
				c.view.Status.SetStatus(failurePrefix + res.Err.Error())
			}
			return
		}

		if msg, ok := res.ServerError(); ok {
			outcome, retErr = OutcomeRejected, &ServerError{StatusCode: res.StatusCode, Message: msg}
			c.view.Status.SetStatus(failurePrefix + msg)
			return
		}

		if !res.OK() && c.mode == FailureReported {
			serr := &ServerError{StatusCode: res.StatusCode}
			outcome, retErr = OutcomeRejected, serr
			c.view.Status.SetStatus(failurePrefix + serr.Error())
			return
		}

		out, err := res.Pretty()
		if err != nil {
			outcome, retErr = OutcomeFailed, &ParseError{StatusCode: res.StatusCode, Err: err}
			if c.mode == FailureReported {
				c.view.Status.SetStatus(failurePrefix + retErr.Error())
			}
			return
		}

		outcome = OutcomeSucceeded
		c.view.Status.SetStatus(StatusComplete)
		c.view.Results.Show()
		c.view.Results.SetOutput(out)
	})

	if !applied {
		klog.V(2).Infof("dropping response of superseded upload #%d", seq)
		return OutcomeSuperseded, nil
	}
	return outcome, retErr
}

// apply runs fn if seq is still the latest submission.
func (c *Controller) apply(seq uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq.Load() {
		return false
	}
	fn()
	return true
}
