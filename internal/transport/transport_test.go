package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestBuildBody(t *testing.T) {
	body, err := BuildBody("claude-sonnet-4-20250514", 512, "system text", "user prompt")
	if err != nil {
		t.Fatalf("BuildBody: %v", err)
	}

	doc := gjson.ParseBytes(body)
	if got := doc.Get("model").String(); got != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", got)
	}
	if got := doc.Get("max_tokens").Int(); got != 512 {
		t.Errorf("max_tokens = %d", got)
	}
	if !doc.Get("stream").Bool() {
		t.Error("stream = false, want true")
	}
	if got := doc.Get("system").String(); got != "system text" {
		t.Errorf("system = %q", got)
	}
	if got := doc.Get("messages.0.role").String(); got != "user" {
		t.Errorf("messages.0.role = %q", got)
	}
	if got := doc.Get("messages.0.content").String(); got != "user prompt" {
		t.Errorf("messages.0.content = %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("go", "func main() {\n\t", "\n}")

	if !strings.Contains(prompt, "Language: go") {
		t.Error("prompt missing language tag")
	}
	if !strings.Contains(prompt, "func main() {\n\t<CURSOR>\n}") {
		t.Errorf("prompt = %q, want cursor marker between before and after", prompt)
	}
}

// collect gathers callbacks into channels for synchronization.
type collect struct {
	mu     sync.Mutex
	data   []byte
	errors []string
	done   chan int
}

func newCollect() *collect {
	return &collect{done: make(chan int, 1)}
}

func (c *collect) callbacks() Callbacks {
	return Callbacks{
		OnData: func(chunk []byte) {
			c.mu.Lock()
			c.data = append(c.data, chunk...)
			c.mu.Unlock()
		},
		OnError: func(msg string) {
			c.mu.Lock()
			c.errors = append(c.errors, msg)
			c.mu.Unlock()
		},
		OnDone: func(status int) { c.done <- status },
	}
}

func (c *collect) wait(t *testing.T) int {
	t.Helper()
	select {
	case status := <-c.done:
		return status
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnDone")
		return -1
	}
}

func TestClientStreamsRawBytes(t *testing.T) {
	const payload = "data: {\"type\":\"message_stop\"}\n\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if got := r.Header.Get("Anthropic-Version"); got == "" {
			t.Error("missing version header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithEndpoint(srv.URL))
	col := newCollect()

	if _, err := client.Open([]byte(`{}`), col.callbacks()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if status := col.wait(t); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}

	col.mu.Lock()
	defer col.mu.Unlock()
	if string(col.data) != payload {
		t.Errorf("data = %q, want raw bytes forwarded unchanged", col.data)
	}
	if len(col.errors) != 0 {
		t.Errorf("errors = %v, want none", col.errors)
	}
}

func TestClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"overloaded"}}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithEndpoint(srv.URL))
	col := newCollect()

	if _, err := client.Open([]byte(`{}`), col.callbacks()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if status := col.wait(t); status != 1 {
		t.Errorf("status = %d, want 1", status)
	}

	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.errors) != 1 || col.errors[0] != "overloaded" {
		t.Errorf("errors = %v, want server-supplied message", col.errors)
	}
	if len(col.data) != 0 {
		t.Errorf("data = %q, want none on failure", col.data)
	}
}

func TestClientResponseCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		big := strings.Repeat("x", 64*1024)
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	client := NewClient("k", WithEndpoint(srv.URL), WithMaxResponseBytes(1024))
	col := newCollect()

	if _, err := client.Open([]byte(`{}`), col.callbacks()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if status := col.wait(t); status != 1 {
		t.Errorf("status = %d, want failure status", status)
	}

	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.errors) != 1 {
		t.Errorf("errors = %v, want one cap error", col.errors)
	}
}

func TestClientCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient("k", WithEndpoint(srv.URL))
	col := newCollect()

	handle, err := client.Open([]byte(`{}`), col.callbacks())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	handle.Cancel()
	handle.Cancel() // idempotent

	if status := col.wait(t); status != 0 {
		t.Errorf("status = %d, want quiet end after cancel", status)
	}
	col.mu.Lock()
	defer col.mu.Unlock()
	if len(col.errors) != 0 {
		t.Errorf("errors = %v, want none after local cancel", col.errors)
	}
}
