package accept

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dshills/ghostwriter/internal/locate"
	"github.com/dshills/ghostwriter/internal/logging"
	"github.com/dshills/ghostwriter/internal/suggest"
)

// Anchor is the buffer position a displayed suggestion is pinned to.
// Movement away from it invalidates the display.
type Anchor struct {
	BufferID int
	Row      int
	Col      int
}

// Span is a run of whole lines in the live buffer.
type Span struct {
	// Line is the index of the first line.
	Line int

	// Count is the number of lines.
	Count int

	// Fuzzy reports whether the span was located by whitespace-tolerant
	// matching rather than verbatim equality.
	Fuzzy bool
}

// Acceptance is the result of consuming a suggestion: text to insert at the
// anchor and, for edits, the span to delete first. Delete is nil when there
// is nothing to remove or the span could not be located.
type Acceptance struct {
	Insert string
	Delete *Span
}

// LineSource provides live buffer content for edit-span resolution.
type LineSource interface {
	// Lines returns the buffer content as lines, without terminators.
	Lines(bufferID int) []string
}

// Engine holds the currently displayed suggestions for one anchor.
//
// The suggestion list is display history: insertion order, deduplicated by
// raw text, with a 1-based current index (0 means empty). All methods are
// synchronous; the embedding host serializes access.
type Engine struct {
	source LineSource
	radius int
	log    *log.Logger

	anchor      Anchor
	suggestions []suggest.Suggestion
	current     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRadius sets the line radius searched when resolving edit spans.
func WithRadius(radius int) Option {
	return func(e *Engine) { e.radius = radius }
}

// WithLogger overrides the engine's logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

// NewEngine creates an acceptance engine resolving edit spans against the
// given line source.
func NewEngine(source LineSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		radius: locate.DefaultRadius,
		log:    logging.New("accept"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Show displays a suggestion at the given anchor. A different anchor clears
// the existing list first. Suggestions already shown (same raw text) are
// dropped; a new one is appended and becomes current.
func (e *Engine) Show(anchor Anchor, s suggest.Suggestion) {
	if anchor != e.anchor {
		e.anchor = anchor
		e.suggestions = nil
		e.current = 0
	}

	for i, existing := range e.suggestions {
		if existing.Raw == s.Raw {
			// Streamed re-deliveries of the same raw text refresh
			// the entry in place so partial accepts restart clean.
			e.suggestions[i] = s
			return
		}
	}

	e.suggestions = append(e.suggestions, s)
	e.current = len(e.suggestions)
}

// Update re-renders a suggestion that is still streaming in: the latest
// entry at the anchor is replaced rather than appended, so each delta
// redraws the same slot. With no entry yet (or a new anchor) it behaves
// like Show.
func (e *Engine) Update(anchor Anchor, s suggest.Suggestion) {
	if anchor != e.anchor || len(e.suggestions) == 0 {
		e.Show(anchor, s)
		return
	}

	// Keep the no-duplicate-raw invariant even mid-stream: when the
	// streamed text converges on an entry already in history, collapse
	// onto that entry instead of holding two copies.
	last := len(e.suggestions) - 1
	for i, existing := range e.suggestions[:last] {
		if existing.Raw == s.Raw {
			e.suggestions = e.suggestions[:last]
			e.suggestions[i] = s
			e.current = i + 1
			return
		}
	}

	e.suggestions[last] = s
	e.current = len(e.suggestions)
}

// Current returns the suggestion under the cursor of the cycling index.
func (e *Engine) Current() (suggest.Suggestion, bool) {
	if e.current == 0 {
		return suggest.Suggestion{}, false
	}
	return e.suggestions[e.current-1], true
}

// Count returns how many suggestions are displayed.
func (e *Engine) Count() int {
	return len(e.suggestions)
}

// Index returns the 1-based current index, 0 when empty.
func (e *Engine) Index() int {
	return e.current
}

// Anchor returns the anchor the display is pinned to.
func (e *Engine) Anchor() Anchor {
	return e.anchor
}

// AcceptFull consumes the current suggestion in its entirety and clears the
// display. For an edit, the delete span is resolved against live content;
// a span that cannot be located is skipped with a warning and the insert
// half still proceeds.
func (e *Engine) AcceptFull() (Acceptance, error) {
	s, ok := e.Current()
	if !ok {
		return Acceptance{}, ErrNoSuggestion
	}
	defer e.Dismiss()

	if !s.IsEdit() {
		return Acceptance{Insert: s.Text}, nil
	}

	var acc Acceptance
	if s.Insert != nil {
		acc.Insert = *s.Insert
	}
	if s.Delete != nil && *s.Delete != "" {
		target := strings.Split(*s.Delete, "\n")
		lines := e.source.Lines(e.anchor.BufferID)
		if m, found := locate.Resolve(lines, target, e.anchor.Row, e.radius); found {
			acc.Delete = &Span{Line: m.Line, Count: len(target), Fuzzy: m.Fuzzy}
		} else {
			e.log.Warn("edit delete span not found, applying insert only",
				"buffer", e.anchor.BufferID, "row", e.anchor.Row)
		}
	}
	return acc, nil
}

// AcceptWord consumes the leading token of the current Insert suggestion
// and keeps the remainder displayed. The token is greedy leading whitespace
// plus an identifier run or a maximal non-whitespace run; pure whitespace
// counts when nothing else matches.
func (e *Engine) AcceptWord() (string, error) {
	return e.acceptPartial(leadingToken)
}

// AcceptLine consumes the first line of the current Insert suggestion, up
// to but excluding the next line break.
func (e *Engine) AcceptLine() (string, error) {
	return e.acceptPartial(leadingLine)
}

// acceptPartial extracts a fragment from the current suggestion and
// replaces its text with the remainder, clearing the display when nothing
// useful remains.
func (e *Engine) acceptPartial(extract func(string) (fragment, remainder string)) (string, error) {
	s, ok := e.Current()
	if !ok {
		return "", ErrNoSuggestion
	}
	if s.IsEdit() {
		return "", ErrEditNotPartial
	}

	fragment, remainder := extract(s.Text)
	if strings.TrimSpace(remainder) == "" {
		e.Dismiss()
		return fragment, nil
	}

	s.Text = remainder
	e.suggestions[e.current-1] = s
	return fragment, nil
}

// Next moves to the next suggestion. It returns false when already at the
// last entry, signaling the caller may want to request a fresh one.
func (e *Engine) Next() bool {
	if e.current == 0 || e.current >= len(e.suggestions) {
		return false
	}
	e.current++
	return true
}

// Prev moves to the previous suggestion; a no-op returning false at the
// start.
func (e *Engine) Prev() bool {
	if e.current <= 1 {
		return false
	}
	e.current--
	return true
}

// Dismiss clears all display state. Idempotent.
func (e *Engine) Dismiss() {
	e.suggestions = nil
	e.current = 0
}

// leadingToken splits off the leading token: greedy leading spaces/tabs,
// then an identifier run or a maximal non-whitespace run. If only
// whitespace follows, the whitespace itself is the token.
func leadingToken(s string) (string, string) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}

	switch {
	case i < len(s) && isIdentByte(s[i]):
		for i < len(s) && isIdentByte(s[i]) {
			i++
		}
	case i < len(s) && !isSpaceByte(s[i]):
		for i < len(s) && !isSpaceByte(s[i]) {
			i++
		}
	default:
		for i < len(s) && isSpaceByte(s[i]) {
			i++
		}
	}

	return s[:i], s[i:]
}

// leadingLine splits off the first line, excluding the line break.
func leadingLine(s string) (string, string) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
