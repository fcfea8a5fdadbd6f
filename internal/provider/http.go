package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPProvider talks to a suggestion backend over JSON HTTP. It is the
// default Provider wired by the serve command; the backend itself is out of
// scope for this layer.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

// NewHTTP creates a provider posting to endpoint.
func NewHTTP(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

type wireRequest struct {
	RequestID   string       `json:"requestId"`
	URI         string       `json:"uri"`
	LanguageID  string       `json:"languageId"`
	Left        string       `json:"left"`
	Right       string       `json:"right"`
	Position    wirePosition `json:"position"`
	MaxResults  int          `json:"maxResults"`
	Supplements []Supplement `json:"supplements,omitempty"`
}

type wirePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type wireResponse struct {
	Suggestions     []Suggestion    `json:"suggestions"`
	ResponseContext ResponseContext `json:"responseContext"`
}

// GenerateSuggestions implements Provider.
func (p *HTTPProvider) GenerateSuggestions(ctx context.Context, req RequestContext) (Response, error) {
	pos := req.FileContext.Position()
	body, err := json.Marshal(wireRequest{
		RequestID:   uuid.NewString(),
		URI:         req.FileContext.URI,
		LanguageID:  req.FileContext.LanguageID,
		Left:        req.FileContext.Left,
		Right:       req.FileContext.Right,
		Position:    wirePosition{Line: pos.Line, Character: pos.Character},
		MaxResults:  req.MaxResults,
		Supplements: req.Supplements,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("calling suggestion backend: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("suggestion backend returned %s", resp.Status)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Response{}, fmt.Errorf("decoding response: %w", err)
	}
	return Response{Suggestions: wire.Suggestions, ResponseContext: wire.ResponseContext}, nil
}

var _ Provider = (*HTTPProvider)(nil)
