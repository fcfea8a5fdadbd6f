// Package patch reconciles model-returned unified diffs against the live
// editor state: classification, pure-addition extraction, overlap
// computation and staleness re-merging.
package patch

import (
	"log/slog"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Category is the classification of a unified diff.
type Category string

// The three diff categories. Classification is total: anything that cannot
// be parsed or confidently reduced lands on CategoryEdit, the safest
// rendering.
const (
	CategoryAddOnly    Category = "addOnly"
	CategoryDeleteOnly Category = "deleteOnly"
	CategoryEdit       Category = "edit"
)

// NoTriggerLine disables the trigger-line alignment check in Classify.
const NoTriggerLine = -1

// Classify determines the category of a unified diff. triggerLine is the
// zero-based line the user triggered on, or NoTriggerLine when unknown.
//
// A diff whose first change does not align with the trigger line is forced
// to CategoryEdit: an edit landing on a different line than where the user
// is looking must never be rendered as a simple insertion. This alignment
// heuristic has known rough edges (an empty-line deletion immediately
// replaced by new content, for one); the edit fallback is the deliberate
// resolution for all of them.
func Classify(diffText string, triggerLine int) Category {
	hunks, err := parseHunks(diffText)
	if err != nil {
		slog.Debug("diff classification failed to parse, defaulting to edit", "error", err)
		return CategoryEdit
	}

	lines := changedLines(hunks)
	if len(lines) == 0 {
		return CategoryEdit
	}

	if triggerLine != NoTriggerLine && lines[0].origLine != triggerLine {
		slog.Debug("diff first change misaligned with trigger line",
			"first_change", lines[0].origLine, "trigger", triggerLine)
		return CategoryEdit
	}

	var adds, dels []changedLine
	for _, l := range lines {
		if l.added {
			adds = append(adds, l)
		} else {
			dels = append(dels, l)
		}
	}
	switch {
	case len(dels) == 0:
		return CategoryAddOnly
	case len(adds) == 0:
		return CategoryDeleteOnly
	}

	nonBlankDels := 0
	for _, d := range dels {
		if strings.TrimSpace(d.text) != "" {
			nonBlankDels++
		}
	}
	if nonBlankDels > 1 {
		return CategoryEdit
	}

	// A delete+insert pair sharing a long common stem is the model's way of
	// describing an insertion into the deleted line.
	if !deletionsPrecedeAdditions(lines) {
		return CategoryEdit
	}
	lastDel := dels[len(dels)-1].text
	var plus strings.Builder
	for _, a := range adds {
		plus.WriteString(a.text)
		plus.WriteByte('\n')
	}
	plusText := strings.TrimSuffix(plus.String(), "\n")

	stem := commonPrefix(lastDel, plusText)
	residualDel := lastDel[len(stem):]
	residualAdd := plusText[len(stem):]
	if strings.TrimSpace(residualDel) == "" || strings.HasSuffix(residualAdd, residualDel) {
		return CategoryAddOnly
	}
	return CategoryEdit
}

// changedLine is one +/- line of a diff with the zero-based original-file
// line it applies to.
type changedLine struct {
	added    bool
	text     string
	origLine int
}

// changedLines flattens hunk bodies into ordered changed lines. Context
// lines advance the original line counter; "\" no-newline markers are
// skipped.
func changedLines(hunks []*diff.Hunk) []changedLine {
	var out []changedLine
	for _, h := range hunks {
		origLine := int(h.OrigStartLine) - 1
		if origLine < 0 {
			origLine = 0
		}
		for _, raw := range strings.Split(strings.TrimSuffix(string(h.Body), "\n"), "\n") {
			if raw == "" {
				origLine++
				continue
			}
			switch raw[0] {
			case '+':
				out = append(out, changedLine{added: true, text: raw[1:], origLine: origLine})
			case '-':
				out = append(out, changedLine{added: false, text: raw[1:], origLine: origLine})
				origLine++
			case '\\':
				// "\ No newline at end of file"
			default:
				origLine++
			}
		}
	}
	return out
}

// deletionsPrecedeAdditions reports whether the change list is exactly one
// block of deletions immediately followed by one block of additions.
func deletionsPrecedeAdditions(lines []changedLine) bool {
	seenAdd := false
	for _, l := range lines {
		if l.added {
			seenAdd = true
		} else if seenAdd {
			return false
		}
	}
	return seenAdd
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// parseHunks parses the hunks of a unified diff, tolerating both full file
// diffs (with ---/+++ headers) and bare hunk sequences.
func parseHunks(diffText string) ([]*diff.Hunk, error) {
	trimmed := strings.TrimSpace(diffText)
	if strings.HasPrefix(trimmed, "---") || strings.HasPrefix(trimmed, "diff ") || strings.HasPrefix(trimmed, "Index:") {
		fd, err := diff.ParseFileDiff([]byte(trimmed))
		if err == nil {
			return fd.Hunks, nil
		}
	}
	if idx := strings.Index(trimmed, "@@"); idx > 0 {
		trimmed = trimmed[idx:]
	}
	return diff.ParseHunks([]byte(trimmed))
}
