// Package document holds position math and immutable document snapshots
// shared by the trigger, session and patch layers.
package document

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Position is a zero-based (line, character) pair. Characters count runes
// within the line, not bytes.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p is strictly before other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// Range is a half-open [Start, End) span of a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// SpansLine reports whether line falls inside the range's line span.
func (r Range) SpansLine(line int) bool {
	return line >= r.Start.Line && line <= r.End.Line
}

// FileContext is an immutable snapshot of a cursor site: everything strictly
// left of the cursor and everything strictly right of it.
type FileContext struct {
	URI        string
	LanguageID string
	Left       string
	Right      string
}

// Position returns the cursor position the context was split at.
func (fc FileContext) Position() Position {
	line := strings.Count(fc.Left, "\n")
	idx := strings.LastIndexByte(fc.Left, '\n')
	return Position{Line: line, Character: len([]rune(fc.Left[idx+1:]))}
}

// CurrentLine returns the text of the cursor's line left of the cursor.
func (fc FileContext) CurrentLine() string {
	if idx := strings.LastIndexByte(fc.Left, '\n'); idx >= 0 {
		return fc.Left[idx+1:]
	}
	return fc.Left
}

// RightOfCursorOnLine returns the text right of the cursor up to the next
// newline.
func (fc FileContext) RightOfCursorOnLine() string {
	if idx := strings.IndexByte(fc.Right, '\n'); idx >= 0 {
		return fc.Right[:idx]
	}
	return fc.Right
}

// ContextAt splits content at pos into a FileContext. Positions beyond the
// end of a line or of the document clamp to the nearest valid offset.
func ContextAt(uri, languageID, content string, pos Position) FileContext {
	off := OffsetOf(content, pos)
	return FileContext{
		URI:        uri,
		LanguageID: languageID,
		Left:       content[:off],
		Right:      content[off:],
	}
}

// OffsetOf converts pos to a byte offset into content, clamping out-of-range
// lines and characters.
func OffsetOf(content string, pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	lineStart := 0
	for l := 0; l < pos.Line; l++ {
		idx := strings.IndexByte(content[lineStart:], '\n')
		if idx < 0 {
			return len(content)
		}
		lineStart += idx + 1
	}
	lineEnd := len(content)
	if idx := strings.IndexByte(content[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}
	// Walk runes so multi-byte characters count as one column.
	off := lineStart
	for i := 0; i < pos.Character && off < lineEnd; i++ {
		_, size := utf8.DecodeRuneInString(content[off:lineEnd])
		off += size
	}
	return off
}

// Snapshot is an immutable full-text capture of a document at a point in
// time. Reconciliation anchors against snapshots rather than the live buffer.
type Snapshot struct {
	URI     string
	Content string
	TakenAt time.Time
}
