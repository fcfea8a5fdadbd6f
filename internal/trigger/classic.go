package trigger

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/language"
)

// Classify determines the classic trigger category for a cursor site.
//
// The line left of the cursor is inspected; if it is blank, the nearest
// preceding non-blank line stands in for it. Whether a trailing sequence
// counts as special comes from the language's profile, and a special
// sequence wins over the enter case, so pressing return after "{" still
// counts as SpecialCharacters.
func (e *Engine) Classify(fc document.FileContext) Type {
	profile := e.languages.Profile(fc.LanguageID)
	line := fc.CurrentLine()
	inspected := line
	if language.IsLineEffectivelyEmpty(inspected) {
		inspected = precedingContentLine(fc.Left)
	}

	if profile.EndsOnSpecial(inspected) {
		return TypeSpecialCharacters
	}
	if isFreshLine(fc.Left, line) {
		return TypeEnter
	}
	return TypeClassifier
}

// ClassifyRawEdit inspects the inserted text of a single editing event,
// avoiding the heavier site classifier for trivially decidable cases.
//
// Multi-line insertions and multi-character reformatting yield TypeNone: a
// paste or formatter run is not a typing signal worth a request.
func (e *Engine) ClassifyRawEdit(languageID, inserted string) Type {
	if inserted == "" {
		return TypeNone
	}
	if isNewlineWithIndent(inserted) {
		return TypeEnter
	}
	if strings.ContainsRune(inserted, '\n') {
		return TypeNone
	}
	runes := []rune(inserted)
	if len(runes) != 1 {
		return TypeNone
	}
	r := runes[0]
	switch {
	case e.languages.Profile(languageID).IsSpecialTriggerRune(r):
		return TypeSpecialCharacters
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.':
		return TypeClassifier
	default:
		return TypeNone
	}
}

// Suppressed reports whether a trigger should be withheld because the text
// immediately right of the cursor on the same line starts with
// non-whitespace. Triggering directly before existing code would likely
// conflict with it.
func (e *Engine) Suppressed(fc document.FileContext) bool {
	right := fc.RightOfCursorOnLine()
	if right == "" {
		return false
	}
	first := []rune(right)[0]
	if unicode.IsSpace(first) {
		return false
	}
	slog.Debug("trigger suppressed by right context",
		"uri", fc.URI, "right", truncateForLog(right))
	return true
}

// Evaluate combines the raw-edit fast path, the site classifier and
// right-context suppression into one decision for an editing event. An empty
// inserted string (pure cursor movement) skips the raw-edit gate.
func (e *Engine) Evaluate(fc document.FileContext, inserted string) Decision {
	t := e.Classify(fc)
	if inserted != "" {
		raw := e.ClassifyRawEdit(fc.LanguageID, inserted)
		if raw == TypeNone {
			return Decision{Type: TypeNone, Reason: "raw edit not a typing signal"}
		}
		// The raw category refines the site category for single-character
		// events; the site classifier still decides Enter vs Special when
		// both could apply.
		if t == TypeClassifier {
			t = raw
		}
	}
	if e.Suppressed(fc) {
		return Decision{Type: t, Suppressed: true, Reason: "non-whitespace right context"}
	}
	return Decision{Type: t}
}

// precedingContentLine returns the nearest non-blank line above the cursor,
// or "" when there is none.
func precedingContentLine(left string) string {
	lines := strings.Split(left, "\n")
	for i := len(lines) - 2; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// isFreshLine reports whether everything typed since the last content line
// is a newline plus optional indentation.
func isFreshLine(left, currentLine string) bool {
	if !strings.ContainsRune(left, '\n') {
		return false
	}
	return strings.TrimLeft(currentLine, " \t") == ""
}

func isNewlineWithIndent(s string) bool {
	s = strings.TrimPrefix(s, "\r")
	if !strings.HasPrefix(s, "\n") {
		return false
	}
	return strings.TrimLeft(s[1:], " \t") == ""
}

func truncateForLog(s string) string {
	const maxLen = 32
	if len(s) > maxLen {
		return s[:maxLen] + "…"
	}
	return s
}
