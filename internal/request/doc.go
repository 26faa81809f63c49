// Package request orchestrates one in-flight completion request: cache
// consultation, transport streaming, and validation of every delivery
// against the latest cursor state. A new request supersedes the previous
// one by id; stale callbacks discover this themselves and become no-ops,
// which is the real correctness guard — cancellation is only a hint.
package request
