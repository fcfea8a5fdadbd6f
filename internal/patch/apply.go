package patch

import (
	"fmt"
	"strings"
)

// Apply applies a unified diff to original and returns the patched content.
// Hunks are applied strictly: a context or deletion line that does not match
// the original text fails the whole application. Callers treat failure as a
// stale suggestion, not an error to surface.
func Apply(original, diffText string) (string, error) {
	hunks, err := parseHunks(diffText)
	if err != nil {
		return "", fmt.Errorf("parsing diff: %w", err)
	}

	srcLines := strings.Split(original, "\n")
	var out []string
	src := 0 // index into srcLines

	for i, h := range hunks {
		start := int(h.OrigStartLine) - 1
		if start < 0 {
			start = 0
		}
		if start < src {
			return "", fmt.Errorf("hunk %d overlaps previous hunk", i+1)
		}
		if start > len(srcLines) {
			return "", fmt.Errorf("hunk %d starts past end of document", i+1)
		}
		out = append(out, srcLines[src:start]...)
		src = start

		for _, raw := range strings.Split(strings.TrimSuffix(string(h.Body), "\n"), "\n") {
			marker, text := splitBodyLine(raw)
			switch marker {
			case ' ':
				if src >= len(srcLines) || srcLines[src] != text {
					return "", fmt.Errorf("hunk %d context mismatch at line %d", i+1, src+1)
				}
				out = append(out, text)
				src++
			case '-':
				if src >= len(srcLines) || srcLines[src] != text {
					return "", fmt.Errorf("hunk %d deletion mismatch at line %d", i+1, src+1)
				}
				src++
			case '+':
				out = append(out, text)
			case '\\':
				// no-newline marker, nothing to emit
			}
		}
	}

	out = append(out, srcLines[src:]...)
	return strings.Join(out, "\n"), nil
}

// splitBodyLine splits a hunk body line into its marker and text. An empty
// line counts as an empty context line; some producers drop the leading
// space.
func splitBodyLine(raw string) (byte, string) {
	if raw == "" {
		return ' ', ""
	}
	switch raw[0] {
	case '+', '-', ' ', '\\':
		return raw[0], raw[1:]
	default:
		return ' ', raw
	}
}
