package transport

import (
	"strings"

	"github.com/tidwall/sjson"
)

// DefaultSystemPrompt instructs the model on output shape: plain code for
// insertions, marker sections for destructive edits. The marker grammar
// must match what the classifier scans for.
const DefaultSystemPrompt = `You are an inline code completion engine. ` +
	`Complete the code at the <CURSOR> marker.

For a plain completion, output only the code to insert at the cursor, with
no commentary and no markdown fences.

If existing code near the cursor must change, output the change as marker
sections instead:

<<<DELETE
the exact lines to remove
>>>
<<<INSERT
the replacement lines
>>>

Output nothing else.`

// BuildPrompt formats the editing context as the user message: language
// tag, the text before the cursor, a cursor marker, and the text after.
func BuildPrompt(filetype, before, after string) string {
	var b strings.Builder
	b.Grow(len(before) + len(after) + len(filetype) + 32)
	b.WriteString("Language: ")
	b.WriteString(filetype)
	b.WriteString("\n\n")
	b.WriteString(before)
	b.WriteString("<CURSOR>")
	b.WriteString(after)
	return b.String()
}

// BuildBody assembles the outbound request payload:
// {model, max_tokens, stream:true, system, messages:[{role:"user", content}]}.
func BuildBody(model string, maxTokens int, system, prompt string) ([]byte, error) {
	body := ""
	var err error
	if body, err = sjson.Set(body, "model", model); err != nil {
		return nil, err
	}
	if body, err = sjson.Set(body, "max_tokens", maxTokens); err != nil {
		return nil, err
	}
	if body, err = sjson.Set(body, "stream", true); err != nil {
		return nil, err
	}
	if body, err = sjson.Set(body, "system", system); err != nil {
		return nil, err
	}
	if body, err = sjson.Set(body, "messages.0.role", "user"); err != nil {
		return nil, err
	}
	if body, err = sjson.Set(body, "messages.0.content", prompt); err != nil {
		return nil, err
	}
	return []byte(body), nil
}
