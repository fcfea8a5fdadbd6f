package patch

import "strings"

// ExtractAdditions concatenates the text of the diff's `+` lines, stripping
// the marker and trimming a single trailing newline. Only meaningful for
// diffs classified CategoryAddOnly, where the additions form one contiguous
// block.
func ExtractAdditions(diffText string) string {
	hunks, err := parseHunks(diffText)
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, l := range changedLines(hunks) {
		if l.added {
			b.WriteString(l.text)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
