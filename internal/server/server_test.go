package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"

	"github.com/charmbracelet/ghost/internal/config"
	"github.com/charmbracelet/ghost/internal/document"
	"github.com/charmbracelet/ghost/internal/engine"
	"github.com/charmbracelet/ghost/internal/provider"
)

type fixedProvider struct {
	resp provider.Response
}

func (p fixedProvider) GenerateSuggestions(context.Context, provider.RequestContext) (provider.Response, error) {
	return p.resp, nil
}

// startServer runs a server over an in-memory pipe and returns a client
// connection to it.
func startServer(t *testing.T, p provider.Provider) *jsonrpc2.Conn {
	t.Helper()

	docs := NewStore()
	eng := engine.New(config.New(config.Default()), docs, p)
	srv := New(eng, docs)

	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, serverSide)
	}()

	client := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	t.Cleanup(func() {
		client.Close()
		cancel()
		<-done
	})
	return client
}

func TestServer_EditorEventRoundTrip(t *testing.T) {
	t.Parallel()
	client := startServer(t, fixedProvider{})
	ctx := context.Background()

	require.NoError(t, client.Call(ctx, "textDocument/didOpen", didOpenParams{
		URI:        "file:///a.go",
		LanguageID: "go",
		Text:       "func main() {\n\t\n}\n",
	}, nil))

	var d decisionResult
	require.NoError(t, client.Call(ctx, "ghost/editorEvent", editorEventParams{
		Kind:     "change",
		URI:      "file:///a.go",
		Position: document.Position{Line: 0, Character: 13},
		Range: &document.Range{
			Start: document.Position{Line: 0, Character: 12},
			End:   document.Position{Line: 0, Character: 13},
		},
		Text: "{",
	}, &d))
	require.Equal(t, "SpecialCharacters", d.Type)
	require.False(t, d.Suppressed)
}

func TestServer_SuggestAndRender(t *testing.T) {
	t.Parallel()
	client := startServer(t, fixedProvider{resp: provider.Response{
		Suggestions: []provider.Suggestion{{ID: "s1", Content: "fmt.Println(1)"}},
	}})
	ctx := context.Background()

	require.NoError(t, client.Call(ctx, "textDocument/didOpen", didOpenParams{
		URI:        "file:///a.go",
		LanguageID: "go",
		Text:       "func main() {\n\t\n}\n",
	}, nil))

	var sr suggestResult
	require.NoError(t, client.Call(ctx, "ghost/suggest", suggestParams{
		URI:      "file:///a.go",
		Position: document.Position{Line: 1, Character: 1},
		Type:     "Classifier",
	}, &sr))
	require.NotEmpty(t, sr.SessionID)

	// The provider call resolves asynchronously; poll until the render
	// lands.
	var rr renderResult
	require.Eventually(t, func() bool {
		rr = renderResult{}
		if err := client.Call(ctx, "ghost/render", renderParams{
			URI:      "file:///a.go",
			Position: document.Position{Line: 1, Character: 1},
		}, &rr); err != nil {
			return false
		}
		return !rr.Discard
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "fmt.Println(1)", rr.Text)
	require.Equal(t, "completion", rr.Kind)
}

func TestServer_SuggestUnknownDocument(t *testing.T) {
	t.Parallel()
	client := startServer(t, fixedProvider{})

	err := client.Call(context.Background(), "ghost/suggest", suggestParams{
		URI: "file:///missing.go",
	}, &suggestResult{})
	require.Error(t, err)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(jsonrpc2.CodeInvalidParams), rpcErr.Code)
}

func TestServer_UnknownMethod(t *testing.T) {
	t.Parallel()
	client := startServer(t, fixedProvider{})

	err := client.Call(context.Background(), "ghost/doesNotExist", struct{}{}, nil)
	require.Error(t, err)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
}
