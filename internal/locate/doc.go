// Package locate finds where a textual span currently lives in mutable
// document content. Edit suggestions name the text they delete, not a
// position; by the time an edit is accepted the buffer may have shifted, so
// the span is re-located with exact matching first and whitespace-tolerant
// fuzzy matching as a fallback.
package locate
