package suggest

// Kind indicates the suggestion variant.
type Kind int

const (
	// KindInsert is a pure insertion at the cursor.
	KindInsert Kind = iota

	// KindEdit is a destructive change: delete a span, insert replacement.
	KindEdit
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Suggestion is a classified completion. Immutable once produced, except
// that the acceptance engine replaces Text as an Insert is consumed
// incrementally.
//
// Raw always preserves the unprocessed model output; it is the identity
// used for deduplication and what gets stored in the cache.
type Suggestion struct {
	// Kind selects which fields below are meaningful.
	Kind Kind

	// Text is the cleaned insertion text (KindInsert only).
	Text string

	// Delete is the span of existing text to remove (KindEdit only).
	// Nil when the model opened no delete section.
	Delete *string

	// Insert is the replacement text (KindEdit only).
	// Nil when the model opened no insert section.
	Insert *string

	// Raw is the unprocessed model output.
	Raw string
}

// IsEdit reports whether the suggestion is a destructive edit.
func (s Suggestion) IsEdit() bool {
	return s.Kind == KindEdit
}
