package patch

import "strings"

// Overlap returns the longest suffix of a that is a prefix of b. Used to
// de-duplicate text at a merge boundary: what the document already supplies
// on one side of the cursor must not be emitted again.
func Overlap(a, b string) string {
	maxLen := min(len(a), len(b))
	for l := maxLen; l > 0; l-- {
		if a[len(a)-l:] == b[:l] {
			return a[len(a)-l:]
		}
	}
	return ""
}

// StripLeftOverlap removes from suggestion the longest prefix already
// supplied by the end of left. The left context keeps growing while a
// request is in flight; whatever the user typed of the suggestion must not
// be inserted twice.
func StripLeftOverlap(left, suggestion string) string {
	ov := Overlap(left, suggestion)
	return suggestion[len(ov):]
}

// TruncateAgainstRightContext shortens suggestion by whatever its tail
// merely repeats of the upcoming document text. The right context is
// normalized first: line endings unified, and a leading run of horizontal
// whitespace stripped up to and including the first newline, so trailing
// indentation before the next line does not defeat the comparison. An
// overlap spanning the entire suggestion yields the empty string, meaning
// discard.
func TruncateAgainstRightContext(suggestion, right string) string {
	if suggestion == "" {
		return ""
	}
	norm := normalizeRightContext(right)
	if norm == "" {
		return suggestion
	}
	ov := Overlap(suggestion, norm)
	return suggestion[:len(suggestion)-len(ov)]
}

// normalizeRightContext unifies line endings and drops a leading run of
// horizontal whitespace only when it is terminated by a newline. Indentation
// on the cursor's own line is real text and must stay.
func normalizeRightContext(right string) string {
	norm := strings.ReplaceAll(right, "\r\n", "\n")
	rest := strings.TrimLeft(norm, " \t")
	if after, ok := strings.CutPrefix(rest, "\n"); ok {
		return after
	}
	return norm
}
