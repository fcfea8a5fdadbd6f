// Package server exposes the engine over JSON-RPC 2.0 on a byte stream,
// typically stdio. It also hosts the in-memory document store fed by the
// document synchronization notifications.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/engine"
	"github.com/charmbracelet/ghost/internal/trigger"
)

// Server routes protocol requests onto an Engine.
type Server struct {
	engine *engine.Engine
	docs   *Store
}

// New creates a server over eng, using docs as its document store.
func New(eng *engine.Engine, docs *Store) *Server {
	return &Server{engine: eng, docs: docs}
}

// Serve runs the JSON-RPC connection over rwc until the peer disconnects or
// ctx is done.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	defer conn.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

// Request and response payloads.

type didOpenParams struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Text       string `json:"text"`
}

type didChangeParams struct {
	URI  string `json:"uri"`
	Text string `json:"text"`
	// Range and InsertedText describe the precise edit when the client can
	// supply one; Range is nil for full-document replacements.
	Range        *document.Range `json:"range,omitempty"`
	InsertedText string          `json:"insertedText,omitempty"`
}

type didCloseParams struct {
	URI string `json:"uri"`
}

type editorEventParams struct {
	Kind     string            `json:"kind"`
	URI      string            `json:"uri"`
	Position document.Position `json:"position"`
	Range    *document.Range   `json:"range,omitempty"`
	Text     string            `json:"text,omitempty"`
}

type decisionResult struct {
	Type       string `json:"type"`
	Suppressed bool   `json:"suppressed"`
	Reason     string `json:"reason,omitempty"`
}

type suggestParams struct {
	URI      string            `json:"uri"`
	Position document.Position `json:"position"`
	Type     string            `json:"type"`
}

type suggestResult struct {
	SessionID string `json:"sessionId"`
}

type renderParams struct {
	URI      string            `json:"uri"`
	Position document.Position `json:"position"`
}

type renderResult struct {
	Text    string `json:"text,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Discard bool   `json:"discard"`
}

type predictionParams struct {
	URI      string            `json:"uri"`
	Position document.Position `json:"position"`
}

type predictionResult struct {
	ShouldTrigger bool   `json:"shouldTrigger"`
	Reason        string `json:"reason"`
}

func (s *Server) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case "textDocument/didOpen":
		var p didOpenParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		s.docs.Open(p.URI, p.LanguageID, p.Text)
		s.engine.OnDocumentOpen(p.URI)
		return nil, nil

	case "textDocument/didChange":
		var p didChangeParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		s.docs.Update(p.URI, p.Text)
		// Clients that report the precise edit alongside the new text feed
		// the edit tracker here; the returned decision is not surfaced for
		// a bare synchronization notification.
		if p.Range != nil {
			s.engine.OnEditorEvent(engine.EditorEvent{
				Kind:     engine.EventChange,
				URI:      p.URI,
				Position: p.Range.End,
				Range:    p.Range,
				Text:     p.InsertedText,
			})
		}
		return nil, nil

	case "textDocument/didClose":
		var p didCloseParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		s.docs.Close(p.URI)
		s.engine.OnDocumentClose(p.URI)
		return nil, nil

	case "ghost/editorEvent":
		var p editorEventParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		d := s.engine.OnEditorEvent(engine.EditorEvent{
			Kind:     engine.EventKind(p.Kind),
			URI:      p.URI,
			Position: p.Position,
			Range:    p.Range,
			Text:     p.Text,
		})
		return decisionResult{Type: string(d.Type), Suppressed: d.Suppressed, Reason: d.Reason}, nil

	case "ghost/editPrediction":
		var p predictionParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		d := s.engine.ShouldTriggerEditPrediction(p.URI, p.Position)
		return predictionResult{ShouldTrigger: d.Trigger, Reason: d.Reason}, nil

	case "ghost/suggest":
		var p suggestParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		sess := s.engine.OnSuggestionRequested(ctx,
			trigger.Decision{Type: trigger.Type(p.Type)}, p.URI, p.Position)
		if sess == nil {
			return nil, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInvalidParams,
				Message: fmt.Sprintf("unknown document %q", p.URI),
			}
		}
		return suggestResult{SessionID: sess.ID}, nil

	case "ghost/render":
		var p renderParams
		if err := unmarshalParams(req, &p); err != nil {
			return nil, err
		}
		sess := s.engine.Sessions().CurrentSession()
		render, ok := s.engine.OnRenderRequested(sess, p.URI, p.Position)
		if !ok {
			return renderResult{Discard: true}, nil
		}
		return renderResult{Text: render.Text, Kind: string(render.Kind)}, nil

	case "ghost/rejected":
		s.engine.OnSuggestionRejected()
		return nil, nil

	default:
		if req.Notif {
			slog.Debug("ignoring unknown notification", "method", req.Method)
			return nil, nil
		}
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

func unmarshalParams(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}
