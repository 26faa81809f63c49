// Package stream decodes a server-sent event stream into typed completion
// events. The parser is incremental: it accepts arbitrarily split byte
// chunks, reassembles logical lines internally, and invokes callbacks for
// each recognized event. Malformed payloads are dropped without error so a
// misbehaving server can never corrupt the completion pipeline.
package stream
