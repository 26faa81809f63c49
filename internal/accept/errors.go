package accept

import "errors"

var (
	// ErrNoSuggestion indicates no suggestion is currently displayed.
	ErrNoSuggestion = errors.New("no suggestion is displayed")

	// ErrEditNotPartial indicates a word/line accept on an edit
	// suggestion, which can only be applied whole.
	ErrEditNotPartial = errors.New("edit suggestions cannot be partially accepted")
)
