// Package cache provides the bounded, time-limited suggestion cache and the
// context fingerprint used as its key. A fingerprint summarizes the editing
// context around the cursor; identical contexts reuse a previously streamed
// completion without a network round trip.
package cache
