package suggest

import "strings"

// Marker grammar for edit suggestions. These are matched against whole
// physical lines, never as substrings: the tokens may legitimately appear
// inside deleted or inserted content.
const (
	MarkerDelete = "<<<DELETE"
	MarkerInsert = "<<<INSERT"
	MarkerClose  = ">>>"

	// CursorMarker is the placeholder the prompt uses for the cursor
	// position; models sometimes echo it back.
	CursorMarker = "<CURSOR>"
)

// section is the marker scanner state.
type section int

const (
	sectionNone section = iota
	sectionDelete
	sectionInsert
)

// Classify turns raw accumulated model output into a Suggestion.
// It returns false when the text yields nothing useful to apply.
func Classify(raw string) (Suggestion, bool) {
	if strings.TrimSpace(raw) == "" {
		return Suggestion{}, false
	}

	if del, ins, found := scanEditSections(raw); found {
		return Suggestion{
			Kind:   KindEdit,
			Delete: del,
			Insert: ins,
			Raw:    raw,
		}, true
	}

	text := cleanInsertion(raw)
	if strings.TrimSpace(text) == "" {
		return Suggestion{}, false
	}
	return Suggestion{
		Kind: KindInsert,
		Text: text,
		Raw:  raw,
	}, true
}

// scanEditSections runs a line-based state machine over raw text looking
// for delete/insert marker sections. While a section is open, only the
// close marker is special; marker-like lines are content. This is why a
// regex cannot do this job: <<<DELETE appearing inside deleted content
// must not open or close anything.
func scanEditSections(raw string) (del, ins *string, found bool) {
	var deleteLines, insertLines []string
	sawDelete, sawInsert := false, false
	state := sectionNone

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		switch state {
		case sectionNone:
			switch line {
			case MarkerDelete:
				state = sectionDelete
				sawDelete = true
			case MarkerInsert:
				state = sectionInsert
				sawInsert = true
			default:
				// Text outside any section is ignored.
			}
		case sectionDelete:
			if line == MarkerClose {
				state = sectionNone
				continue
			}
			deleteLines = append(deleteLines, line)
		case sectionInsert:
			if line == MarkerClose {
				state = sectionNone
				continue
			}
			insertLines = append(insertLines, line)
		}
	}

	if !sawDelete && !sawInsert {
		return nil, nil, false
	}
	if sawDelete {
		s := strings.Join(deleteLines, "\n")
		del = &s
	}
	if sawInsert {
		s := strings.Join(insertLines, "\n")
		ins = &s
	}
	return del, ins, true
}

// cleanInsertion normalizes raw output into insertable text: one matching
// code-fence pair is removed, the cursor placeholder is stripped anywhere,
// a single trailing newline is dropped, and leading whitespace is trimmed.
func cleanInsertion(raw string) string {
	text := stripFence(raw)
	text = strings.ReplaceAll(text, CursorMarker, "")
	text = strings.TrimSuffix(text, "\n")
	return strings.TrimLeft(text, " \t\r\n")
}

// stripFence removes a single matching pair of leading/trailing code-fence
// delimiters. Anything that is not a complete fenced block passes through
// unchanged.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return s
	}
	if strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
