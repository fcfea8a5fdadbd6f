package trigger

import (
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/ghost/internal/document"
)

// Edit-prediction reasons, reported on both positive and negative decisions
// so trigger behavior can be diagnosed from debug logs.
const (
	ReasonNoRecentEdit      = "no recent edit on line"
	ReasonWordInterior      = "cursor inside a word"
	ReasonRejectionCooldown = "recent rejection"
	ReasonNoRightContent    = "no trailing content on line"
	ReasonNoBooster         = "gates passed but no booster"
	ReasonAfterKeyword      = "after keyword"
	ReasonAfterDelimiter    = "after delimiter"
	ReasonCursorPause       = "cursor pause"
	ReasonLineStart         = "beginning of line"
)

// PredictionContext is the input to an edit-prediction decision.
type PredictionContext struct {
	URI        string
	LanguageID string
	Position   document.Position

	// LineLeft and LineRight are the current line's text on either side of
	// the cursor.
	LineLeft  string
	LineRight string

	// LastRejectedAt is when the user last explicitly rejected a
	// suggestion; the zero value means never.
	LastRejectedAt time.Time
}

// PredictionDecision is the outcome of ShouldTriggerEditPrediction.
type PredictionDecision struct {
	Trigger bool
	Reason  string
}

// ShouldTriggerEditPrediction applies the edit-prediction policy: a set of
// required gates that all must hold, then a set of boosters of which any one
// suffices. Gates passing without a booster is still a negative.
func (e *Engine) ShouldTriggerEditPrediction(pctx PredictionContext) PredictionDecision {
	opts := e.cfg.Get()

	// Gates. Each failure is terminal.
	if !e.edits.HasRecentEditOnLine(pctx.URI, pctx.Position.Line, opts.RecentEditWindow.Std()) {
		return e.predictionResult(pctx, false, ReasonNoRecentEdit)
	}
	if insideWord(pctx.LineLeft, pctx.LineRight) {
		return e.predictionResult(pctx, false, ReasonWordInterior)
	}
	if !pctx.LastRejectedAt.IsZero() && e.now().Sub(pctx.LastRejectedAt) < opts.RejectionCooldown.Std() {
		return e.predictionResult(pctx, false, ReasonRejectionCooldown)
	}
	if strings.TrimSpace(pctx.LineRight) == "" {
		return e.predictionResult(pctx, false, ReasonNoRightContent)
	}

	// Boosters. First match wins.
	profile := e.languages.Profile(pctx.LanguageID)
	switch {
	case profile.EndsOnKeyword(pctx.LineLeft):
		return e.predictionResult(pctx, true, ReasonAfterKeyword)
	case profile.EndsOnDelimiter(pctx.LineLeft):
		return e.predictionResult(pctx, true, ReasonAfterDelimiter)
	case e.cursors.HasPositionBeenStableFor(pctx.URI, pctx.Position, opts.PauseWindow.Std()):
		return e.predictionResult(pctx, true, ReasonCursorPause)
	case strings.TrimLeft(pctx.LineLeft, " \t") == "":
		return e.predictionResult(pctx, true, ReasonLineStart)
	}
	return e.predictionResult(pctx, false, ReasonNoBooster)
}

func (e *Engine) predictionResult(pctx PredictionContext, trigger bool, reason string) PredictionDecision {
	slog.Debug("edit prediction decision",
		"uri", pctx.URI,
		"line", pctx.Position.Line,
		"trigger", trigger,
		"reason", reason)
	return PredictionDecision{Trigger: trigger, Reason: reason}
}

// insideWord reports whether the characters adjacent to the cursor on both
// sides are word characters, placing the cursor in a word's interior.
func insideWord(left, right string) bool {
	if left == "" || right == "" {
		return false
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	return isWordRune(leftRunes[len(leftRunes)-1]) && isWordRune(rightRunes[0])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
