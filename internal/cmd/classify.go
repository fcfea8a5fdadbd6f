package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/charmbracelet/ghost/internal/patch"
)

var flagTriggerLine int

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a unified diff the way the render path would",
	Long: `Reads a unified diff from the given file, or stdin when omitted, and
prints its category. For pure additions the extracted insertion text is
printed as well. Useful for diagnosing why a suggestion rendered as a full
edit instead of an insertion.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading diff: %w", err)
		}

		cat := patch.Classify(string(raw), flagTriggerLine)
		fmt.Fprintln(cmd.OutOrStdout(), string(cat))
		if cat == patch.CategoryAddOnly {
			fmt.Fprintln(cmd.OutOrStdout(), patch.ExtractAdditions(string(raw)))
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().IntVar(&flagTriggerLine, "trigger-line", patch.NoTriggerLine,
		"zero-based line the suggestion was triggered on; -1 disables the alignment check")
}
