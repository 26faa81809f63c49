package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Context window sizes for fingerprinting. Only the text nearest the cursor
// determines cache identity; edits far away should not invalidate a hit.
const (
	// WindowBefore is how many bytes before the cursor participate.
	WindowBefore = 1024

	// WindowAfter is how many bytes after the cursor participate.
	WindowAfter = 512

	// digestThreshold is the combined length beyond which the key is
	// collapsed to a fixed-size digest.
	digestThreshold = 512
)

// Fingerprint derives the cache key for an editing context.
//
// Each component is prefixed with its length so that different
// (before, after) pairs whose concatenations collide produce distinct keys:
// ("ab","c") and ("a","bc") must not share an entry.
func Fingerprint(filetype, before, after string) string {
	if len(before) > WindowBefore {
		before = before[len(before)-WindowBefore:]
	}
	if len(after) > WindowAfter {
		after = after[:WindowAfter]
	}

	var b strings.Builder
	b.Grow(len(filetype) + len(before) + len(after) + 24)
	b.WriteString(filetype)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(before)))
	b.WriteByte(':')
	b.WriteString(before)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(len(after)))
	b.WriteByte(':')
	b.WriteString(after)

	key := b.String()
	if len(key) <= digestThreshold {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
