// Package accept holds the suggestions currently on display and lets the
// host consume them: whole, word by word, or line by line, with cycling
// through alternatives. Edit suggestions are applied atomically; their
// delete span is re-located against live buffer content at acceptance time.
package accept
