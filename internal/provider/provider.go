// Package provider defines the contract with the backend suggestion
// service. The service is opaque to this layer: it receives a cursor-site
// context and asynchronously returns candidate suggestions, possibly as
// unified diffs.
package provider

import (
	"context"

	"github.com/charmbracelet/ghost/internal/document"
)

// Supplement is an auxiliary text snippet (cross-file or project-derived)
// passed through to the backend. Produced by an external retrieval engine.
type Supplement struct {
	FilePath string `json:"filePath,omitempty"`
	Content  string `json:"content"`
}

// RequestContext is the input to one suggestion request.
type RequestContext struct {
	FileContext document.FileContext
	MaxResults  int
	Supplements []Supplement
}

// Suggestion is one candidate returned by the backend. Content is either
// plain insertion text or a unified diff, depending on the trigger.
type Suggestion struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ResponseContext carries backend correlation metadata.
type ResponseContext struct {
	RequestID         string `json:"requestId"`
	BackendSessionID  string `json:"backendSessionId"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// Response is the resolved result of one request.
type Response struct {
	Suggestions     []Suggestion
	ResponseContext ResponseContext
}

// Provider generates suggestions for a request context. Implementations may
// fail with transport or auth errors; cancellation via ctx is expected to
// surface as an error.
type Provider interface {
	GenerateSuggestions(ctx context.Context, req RequestContext) (Response, error)
}
