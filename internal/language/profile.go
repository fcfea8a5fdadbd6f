// Package language provides per-language keyword and delimiter tables used
// to classify the character immediately left of the cursor. Unknown
// languages resolve to a generic profile rather than failing.
package language

import (
	"strings"
	"unicode"
)

// Profile holds the keyword, delimiter and special-sequence tables for one
// language. Profiles are immutable once built; callers share a single
// instance per language.
type Profile struct {
	ID              string
	keywords        map[string]struct{}
	delimiters      map[rune]struct{}
	specialSuffixes []string
	specialRunes    map[rune]struct{}
}

func newProfile(id string, keywords []string, delimiters string, special []string) *Profile {
	if special == nil {
		special = defaultSpecialSuffixes
	}
	p := &Profile{
		ID:              id,
		keywords:        make(map[string]struct{}, len(keywords)),
		delimiters:      make(map[rune]struct{}, len(delimiters)),
		specialSuffixes: special,
		specialRunes:    make(map[rune]struct{}, len(special)),
	}
	for _, kw := range keywords {
		p.keywords[kw] = struct{}{}
	}
	for _, d := range delimiters {
		p.delimiters[d] = struct{}{}
	}
	for _, s := range special {
		if runes := []rune(s); len(runes) == 1 {
			p.specialRunes[runes[0]] = struct{}{}
		}
	}
	return p
}

// Keywords returns the keyword set. Callers must not mutate it.
func (p *Profile) Keywords() map[string]struct{} { return p.keywords }

// Delimiters returns the delimiter set. Callers must not mutate it.
func (p *Profile) Delimiters() map[rune]struct{} { return p.delimiters }

// IsKeyword reports whether token is a keyword of the language.
func (p *Profile) IsKeyword(token string) bool {
	_, ok := p.keywords[token]
	return ok
}

// IsDelimiter reports whether r is an operator or delimiter character.
func (p *Profile) IsDelimiter(r rune) bool {
	_, ok := p.delimiters[r]
	return ok
}

// EndsOnKeyword reports whether the last whitespace-delimited token of
// lineText is a keyword. Trailing whitespace is ignored.
func (p *Profile) EndsOnKeyword(lineText string) bool {
	trimmed := strings.TrimRightFunc(lineText, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	fields := strings.Fields(trimmed)
	return p.IsKeyword(fields[len(fields)-1])
}

// EndsOnDelimiter reports whether the last non-whitespace character of
// lineText is a delimiter or operator.
func (p *Profile) EndsOnDelimiter(lineText string) bool {
	trimmed := strings.TrimRightFunc(lineText, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	return p.IsDelimiter(runes[len(runes)-1])
}

// EndsOnSpecial reports whether lineText ends on one of the language's
// special trigger sequences, ignoring trailing whitespace. Sequences are
// checked longest-first so a paired "()" wins over a bare "(".
func (p *Profile) EndsOnSpecial(lineText string) bool {
	trimmed := strings.TrimRightFunc(lineText, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	for _, suffix := range p.specialSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

// IsSpecialTriggerRune reports whether r on its own is a special trigger
// character for the language.
func (p *Profile) IsSpecialTriggerRune(r rune) bool {
	_, ok := p.specialRunes[r]
	return ok
}

// IsLineEffectivelyEmpty reports whether lineText contains only whitespace.
func IsLineEffectivelyEmpty(lineText string) bool {
	return strings.TrimSpace(lineText) == ""
}
