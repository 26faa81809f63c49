package locate

import "strings"

// DefaultRadius is the default line radius searched around an edit anchor.
const DefaultRadius = 50

// Match describes a located span.
type Match struct {
	// Line is the index of the first matched line.
	Line int

	// Fuzzy reports whether whitespace-tolerant matching was needed.
	Fuzzy bool
}

// FindExact scans candidate start indices in [start, end] and returns the
// lowest index where every target line equals the corresponding buffer line
// verbatim.
func FindExact(lines, target []string, start, end int) (int, bool) {
	return scan(lines, target, start, end, func(a, b string) bool {
		return a == b
	})
}

// FindFuzzy is FindExact with leading/trailing whitespace trimmed from both
// sides of every comparison. It tolerates reindentation without tolerating
// content changes.
func FindFuzzy(lines, target []string, start, end int) (int, bool) {
	return scan(lines, target, start, end, func(a, b string) bool {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	})
}

// Resolve locates target within radius lines of anchor, preferring an exact
// match over a fuzzy one across the whole window.
func Resolve(lines, target []string, anchor, radius int) (Match, bool) {
	if radius < 0 {
		radius = DefaultRadius
	}
	start := anchor - radius
	end := anchor + radius

	if idx, ok := FindExact(lines, target, start, end); ok {
		return Match{Line: idx}, true
	}
	if idx, ok := FindFuzzy(lines, target, start, end); ok {
		return Match{Line: idx, Fuzzy: true}, true
	}
	return Match{}, false
}

// scan is the shared candidate sweep. Bounds are clamped to valid start
// positions; an empty target never matches.
func scan(lines, target []string, start, end int, eq func(a, b string) bool) (int, bool) {
	if len(target) == 0 {
		return 0, false
	}
	if start < 0 {
		start = 0
	}
	last := len(lines) - len(target)
	if end > last {
		end = last
	}

	for i := start; i <= end; i++ {
		matched := true
		for j, want := range target {
			if !eq(lines[i+j], want) {
				matched = false
				break
			}
		}
		if matched {
			return i, true
		}
	}
	return 0, false
}
