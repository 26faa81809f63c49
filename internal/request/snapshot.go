package request

// Context is the editing context a completion request is built from,
// produced by the host's context builder.
type Context struct {
	// BufferID identifies the buffer the cursor is in.
	BufferID int

	// Row and Col are the cursor position at request time.
	Row int
	Col int

	// Filetype tags the buffer's language for fingerprinting and the
	// prompt.
	Filetype string

	// Before and After are the text surrounding the cursor.
	Before string
	After  string

	// Prefix is the current line's text before the cursor.
	Prefix string
}

// Snapshot captures the request-issue state a response is validated
// against. Superseded by the next request, never mutated.
type Snapshot struct {
	// RequestID is unique and strictly increasing for the process
	// lifetime.
	RequestID int64

	BufferID int
	Row      int
	Col      int
	Prefix   string
}

// View reports the live cursor state at delivery time.
type View interface {
	// Position returns the focused buffer and cursor location.
	Position() (bufferID, row, col int)
}
