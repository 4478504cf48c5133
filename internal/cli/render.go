package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

const renderWordWrap = 100

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a markdown artifact in the terminal",
	Long:  "Render review_comment.txt, qa_comment.txt or any other markdown file with terminal styling.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitFailure
			return
		}

		out, err := renderMarkdown(string(data))
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error rendering %s: %v\n", args[0], err)
			exitCode = ExitFailure
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	},
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return r.Render(md)
}
