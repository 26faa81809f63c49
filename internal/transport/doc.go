// Package transport carries completion requests to the model endpoint and
// delivers raw response bytes back. It deliberately does not interpret the
// stream: SSE decoding belongs to the stream package. What it does own is
// connection lifecycle, cancellation, HTTP status handling, and the total
// response size cap.
package transport
