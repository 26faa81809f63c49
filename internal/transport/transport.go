package transport

// Callbacks receive transport activity for one open stream. OnData may be
// called any number of times with arbitrarily sized chunks; OnError and
// OnDone are each called at most once, and OnDone is always last.
type Callbacks struct {
	// OnData delivers a chunk of raw response bytes.
	OnData func(chunk []byte)

	// OnError reports a connection or server failure.
	OnError func(message string)

	// OnDone reports stream end with an exit status (0 = clean).
	OnDone func(status int)
}

// Handle controls an open stream.
type Handle interface {
	// Cancel aborts the stream, best-effort. Safe to call repeatedly.
	Cancel()
}

// Transport opens a completion stream for a prepared request body.
type Transport interface {
	Open(body []byte, cb Callbacks) (Handle, error)
}
