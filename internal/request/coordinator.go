package request

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dshills/ghostwriter/internal/accept"
	"github.com/dshills/ghostwriter/internal/cache"
	"github.com/dshills/ghostwriter/internal/logging"
	"github.com/dshills/ghostwriter/internal/stream"
	"github.com/dshills/ghostwriter/internal/suggest"
	"github.com/dshills/ghostwriter/internal/transport"
)

// Default model parameters, overridable via options.
const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1024
)

// Sink receives validated suggestions for display. accept.Engine
// satisfies this.
type Sink interface {
	// Show displays a completed or cached suggestion (dedup + append
	// semantics).
	Show(anchor accept.Anchor, s suggest.Suggestion)

	// Update re-renders a still-streaming suggestion in place, opening
	// the display slot if none exists yet.
	Update(anchor accept.Anchor, s suggest.Suggestion)
}

// Observer is notified of transport failures. Stale-context discards and
// empty classifications are not errors and are never reported.
type Observer interface {
	StreamError(requestID int64, message string)
}

// CancelFunc abandons an in-flight request. Idempotent; subsequent stream
// callbacks for the request become no-ops and the transport is asked to
// abort best-effort.
type CancelFunc func()

// Coordinator drives the completion request lifecycle. At most one request
// is live at a time: issuing a new one supersedes the previous by id.
type Coordinator struct {
	cache     *cache.Cache
	transport transport.Transport
	view      View
	sink      Sink
	observer  Observer
	log       *log.Logger

	model     string
	maxTokens int
	system    string

	nextID atomic.Int64

	mu      sync.Mutex
	current Snapshot
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithModel sets the model requested from the endpoint.
func WithModel(model string) Option {
	return func(c *Coordinator) { c.model = model }
}

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int) Option {
	return func(c *Coordinator) { c.maxTokens = n }
}

// WithSystemPrompt overrides the system prompt.
func WithSystemPrompt(system string) Option {
	return func(c *Coordinator) { c.system = system }
}

// WithObserver sets the failure observer. The default logs at error level.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// NewCoordinator creates a coordinator wiring the cache, transport, live
// view, and suggestion sink together.
func NewCoordinator(sc *cache.Cache, tr transport.Transport, view View, sink Sink, opts ...Option) *Coordinator {
	c := &Coordinator{
		cache:     sc,
		transport: tr,
		view:      view,
		sink:      sink,
		log:       logging.New("request"),
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		system:    transport.DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = &logObserver{log: c.log}
	}
	return c
}

// Request issues a completion request for the given context, superseding
// any request still in flight. A cache hit delivers synchronously with no
// network call; the returned CancelFunc is then a no-op.
func (c *Coordinator) Request(ctx Context) CancelFunc {
	id := c.nextID.Add(1)
	snap := Snapshot{
		RequestID: id,
		BufferID:  ctx.BufferID,
		Row:       ctx.Row,
		Col:       ctx.Col,
		Prefix:    ctx.Prefix,
	}

	c.mu.Lock()
	if prev := c.current.RequestID; prev != 0 && prev != id {
		c.log.Debug("superseding request", "previous", prev, "request", id)
	}
	c.current = snap
	c.mu.Unlock()

	key := cache.Fingerprint(ctx.Filetype, ctx.Before, ctx.After)
	if text, ok := c.cache.Get(key); ok {
		c.log.Debug("cache hit", "request", id)
		c.deliver(id, text, true)
		return func() {}
	}

	prompt := transport.BuildPrompt(ctx.Filetype, ctx.Before, ctx.After)
	body, err := transport.BuildBody(c.model, c.maxTokens, c.system, prompt)
	if err != nil {
		c.reportError(id, "building request body: "+err.Error())
		return func() {}
	}

	fl := &inflight{id: id}
	var accum strings.Builder
	fl.parser = stream.NewParser(stream.Handler{
		TextDelta: func(text string) {
			accum.WriteString(text)
			c.deliver(id, accum.String(), false)
		},
		Complete: func() {
			full := accum.String()
			c.deliver(id, full, true)
			// Cached even when stale for this snapshot: the same
			// context may recur.
			c.cache.Set(key, full)
		},
		Error: func(message string) {
			c.reportError(id, message)
		},
	})

	handle, err := c.transport.Open(body, transport.Callbacks{
		OnData: func(chunk []byte) {
			fl.feed(chunk)
		},
		OnError: func(message string) {
			if fl.released.Load() {
				return
			}
			c.reportError(id, message)
		},
		OnDone: func(status int) {
			c.log.Debug("stream closed", "request", id, "status", status)
		},
	})
	if err != nil {
		c.reportError(id, "opening completion stream: "+err.Error())
		return func() {}
	}
	fl.handle = handle

	return fl.cancel
}

// Snapshot returns the snapshot of the most recently issued request.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// deliver classifies accumulated text and pushes it to the sink when the
// request is still valid. Streaming deltas re-render via Update; completed
// and cached results land via Show, which dedups into the slot the deltas
// were streaming through.
func (c *Coordinator) deliver(id int64, text string, show bool) {
	s, ok := suggest.Classify(text)
	if !ok {
		return
	}
	snap, valid := c.validate(id)
	if !valid {
		return
	}
	anchor := accept.Anchor{BufferID: snap.BufferID, Row: snap.Row, Col: snap.Col}
	if show {
		c.sink.Show(anchor, s)
	} else {
		c.sink.Update(anchor, s)
	}
}

// validate implements the delivery gate: the request must still be the
// latest, the buffer and row unchanged, and the column not moved backward.
// Forward column movement means the user kept typing and the suggestion is
// still a valid prefix continuation.
func (c *Coordinator) validate(id int64) (Snapshot, bool) {
	c.mu.Lock()
	snap := c.current
	c.mu.Unlock()

	if id != snap.RequestID {
		return Snapshot{}, false
	}
	buf, row, col := c.view.Position()
	if buf != snap.BufferID || row != snap.Row || col < snap.Col {
		return Snapshot{}, false
	}
	return snap, true
}

// reportError surfaces a transport failure for a request that is still
// current; failures of superseded requests end silently.
func (c *Coordinator) reportError(id int64, message string) {
	c.mu.Lock()
	current := c.current.RequestID
	c.mu.Unlock()

	if id != current {
		c.log.Debug("dropping error from superseded request", "request", id)
		return
	}
	c.observer.StreamError(id, message)
}

// inflight is the per-request stream state shared by transport callbacks
// and the cancel func.
type inflight struct {
	id       int64
	parser   *stream.Parser
	handle   transport.Handle
	released atomic.Bool

	mu sync.Mutex
}

// feed forwards bytes to the parser unless the request was abandoned.
// Serialized because transport delivers from its own goroutine.
func (f *inflight) feed(chunk []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released.Load() {
		return
	}
	f.parser.Feed(chunk)
}

// cancel marks the request abandoned and aborts the transport best-effort.
func (f *inflight) cancel() {
	if f.released.Swap(true) {
		return
	}
	if f.handle != nil {
		f.handle.Cancel()
	}
}

// logObserver is the default observer: failures become error-level logs.
type logObserver struct {
	log *log.Logger
}

func (o *logObserver) StreamError(requestID int64, message string) {
	o.log.Error("completion failed", "request", requestID, "error", message)
}
