package stream

import (
	"bytes"
	"strings"

	"github.com/tidwall/gjson"
)

// SSE framing and payload constants for the completion stream.
const (
	dataPrefix = "data:"

	// doneSentinel is an alternative terminal marker some gateways emit
	// instead of an explicit message_stop event.
	doneSentinel = "[DONE]"

	eventDelta = "content_block_delta"
	eventStop  = "message_stop"
	eventError = "error"

	deltaText = "text_delta"

	// defaultErrorMessage is used when an error event carries no
	// structured message.
	defaultErrorMessage = "completion stream error"
)

// Handler receives parsed stream events. Nil fields are skipped.
type Handler struct {
	// TextDelta is called with each incremental text fragment.
	TextDelta func(text string)

	// Complete is called exactly once when the stream terminates normally.
	Complete func()

	// Error is called when the server reports a structured error.
	Error func(message string)
}

// Parser incrementally decodes SSE bytes into events.
// It owns an internal buffer; partial lines remain buffered across Feed
// calls until their terminating newline arrives. Capping total response
// size is the transport's job, not the parser's.
type Parser struct {
	handler Handler
	buf     []byte

	// completed latches after the terminal event; further input is ignored.
	completed bool
}

// NewParser creates a parser delivering events to the given handler.
func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

// Feed appends a chunk to the internal buffer and emits events for every
// complete line it now contains. Chunks may be split at any byte boundary.
func (p *Parser) Feed(chunk []byte) {
	if p.completed {
		return
	}
	p.buf = append(p.buf, chunk...)

	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			return
		}
		line := p.buf[:i]
		p.buf = p.buf[i+1:]

		// Tolerate CRLF framing.
		line = bytes.TrimSuffix(line, []byte{'\r'})

		p.handleLine(line)
		if p.completed {
			return
		}
	}
}

// Completed reports whether the terminal event has been observed.
func (p *Parser) Completed() bool {
	return p.completed
}

// handleLine interprets one complete line. Blank separators, comments, and
// event-name lines are ignored; only data lines carry payloads.
func (p *Parser) handleLine(line []byte) {
	s := string(line)
	if !strings.HasPrefix(s, dataPrefix) {
		return
	}
	payload := strings.TrimSpace(s[len(dataPrefix):])

	if payload == doneSentinel {
		p.complete()
		return
	}

	if !gjson.Valid(payload) {
		// Malformed payloads must not propagate corrupt events.
		return
	}
	event := gjson.Parse(payload)

	switch event.Get("type").String() {
	case eventDelta:
		delta := event.Get("delta")
		if delta.Get("type").String() != deltaText {
			return
		}
		text := delta.Get("text")
		if !text.Exists() {
			return
		}
		if p.handler.TextDelta != nil {
			p.handler.TextDelta(text.String())
		}
	case eventStop:
		p.complete()
	case eventError:
		msg := event.Get("error.message").String()
		if msg == "" {
			msg = defaultErrorMessage
		}
		if p.handler.Error != nil {
			p.handler.Error(msg)
		}
	default:
		// Recognized-and-ignored: ping, content_block_start, and
		// friends carry nothing the pipeline needs.
	}
}

// complete fires the Complete callback once and latches the parser.
func (p *Parser) complete() {
	if p.completed {
		return
	}
	p.completed = true
	if p.handler.Complete != nil {
		p.handler.Complete()
	}
}
