package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dshills/ghostwriter/internal/logging"
)

const (
	// DefaultEndpoint is the messages endpoint completions stream from.
	DefaultEndpoint = "https://api.anthropic.com/v1/messages"

	// DefaultMaxResponseBytes caps total streamed response size. The
	// stream parser imposes no cap of its own, so this is the only
	// guard against a runaway response.
	DefaultMaxResponseBytes = 1 << 20

	apiVersion = "2023-06-01"

	readChunkSize = 4 * 1024
)

// Client streams completions over HTTP with server-sent events. Response
// bytes are forwarded raw; decoding is the caller's concern.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	maxBytes   int
	log        *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxResponseBytes caps total streamed bytes per request.
func WithMaxResponseBytes(n int) ClientOption {
	return func(c *Client) { c.maxBytes = n }
}

// NewClient creates a streaming completion client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		maxBytes:   DefaultMaxResponseBytes,
		log:        logging.New("transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// streamHandle cancels the request context backing one stream.
type streamHandle struct {
	cancel context.CancelFunc
}

func (h *streamHandle) Cancel() {
	h.cancel()
}

// Open POSTs the request body and streams the response to cb from a
// reader goroutine. The returned handle aborts the request best-effort.
func (c *Client) Open(body []byte, cb Callbacks) (Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	session := uuid.NewString()
	c.log.Debug("opening completion stream", "session", session)

	go c.run(req, session, cb)

	return &streamHandle{cancel: cancel}, nil
}

// run performs the request and forwards response bytes until EOF, error,
// cancellation, or the size cap.
func (c *Client) run(req *http.Request, session string, cb Callbacks) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			// Cancelled locally; ends quietly.
			c.log.Debug("stream cancelled", "session", session)
			c.done(cb, 0)
			return
		}
		c.fail(cb, fmt.Sprintf("completion request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.fail(cb, statusMessage(resp))
		return
	}

	buf := make([]byte, readChunkSize)
	total := 0
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			total += n
			if total > c.maxBytes {
				c.fail(cb, fmt.Sprintf("completion response exceeded %d bytes", c.maxBytes))
				return
			}
			if cb.OnData != nil {
				cb.OnData(buf[:n])
			}
		}
		if err != nil {
			if err == io.EOF {
				c.log.Debug("stream finished", "session", session, "bytes", total)
				c.done(cb, 0)
				return
			}
			if req.Context().Err() != nil {
				c.done(cb, 0)
				return
			}
			c.fail(cb, fmt.Sprintf("reading completion stream: %v", err))
			return
		}
	}
}

func (c *Client) fail(cb Callbacks, message string) {
	c.log.Debug("stream failed", "error", message)
	if cb.OnError != nil {
		cb.OnError(message)
	}
	c.done(cb, 1)
}

func (c *Client) done(cb Callbacks, status int) {
	if cb.OnDone != nil {
		cb.OnDone(status)
	}
}

// statusMessage extracts the server's structured error message from a
// non-success response, falling back to the HTTP status line.
func statusMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	if err == nil {
		if msg := gjson.GetBytes(data, "error.message").String(); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("completion request failed: %s", resp.Status)
}
