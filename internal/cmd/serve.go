package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/charmbracelet/ghost/internal/config"
	"github.com/charmbracelet/ghost/internal/engine"
	"github.com/charmbracelet/ghost/internal/provider"
	"github.com/charmbracelet/ghost/internal/server"
)

var flagBackend string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the completion layer over JSON-RPC on stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if closer := setupLogging(); closer != nil {
			defer closer.Close()
		}

		opts, err := loadOptions()
		if err != nil {
			return err
		}
		cfg := config.New(opts)

		docs := server.NewStore()
		prov := provider.NewHTTP(flagBackend)
		eng := engine.New(cfg, docs, prov)

		ctx := cmd.Context()
		go eng.RunSweeper(ctx)

		slog.Info("ghost serving on stdio", "backend", flagBackend)
		return server.New(eng, docs).Serve(ctx, stdio{})
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagBackend, "backend", "http://127.0.0.1:4818/suggestions", "suggestion backend endpoint")
}

// stdio joins the process's stdin and stdout into one stream for the
// JSON-RPC connection.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return os.Stdin.Close() }

var _ io.ReadWriteCloser = stdio{}
