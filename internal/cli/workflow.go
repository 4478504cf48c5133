package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/ghaction"
)

var (
	flagWorkflowOutput   string
	flagWorkflowForce    bool
	flagWorkflowVersion  string
	flagWorkflowProvider string
	flagWorkflowNoReview bool
	flagWorkflowNoQA     bool
	flagWorkflowStdout   bool
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Generate a GitHub Actions workflow that runs prbot on pull requests",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := ghaction.DefaultConfig()
		cfg.Provider = flagWorkflowProvider
		cfg.Version = flagWorkflowVersion
		cfg.Review = !flagWorkflowNoReview
		cfg.QA = !flagWorkflowNoQA

		if flagWorkflowStdout {
			content, err := ghaction.Generate(cfg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				exitCode = ExitFailure
				return
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return
		}

		if err := ghaction.WriteWorkflow(cfg, flagWorkflowOutput, flagWorkflowForce); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitFailure
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workflow written to %s\n", flagWorkflowOutput)
		fmt.Fprintf(cmd.OutOrStdout(), "Add the %s repository secret before opening a pull request.\n", ghaction.SecretName(cfg.Provider))
	},
}

func init() {
	workflowCmd.Flags().StringVarP(&flagWorkflowOutput, "output", "o", ghaction.DefaultPath, "Workflow file path")
	workflowCmd.Flags().BoolVar(&flagWorkflowForce, "force", false, "Overwrite an existing workflow file")
	workflowCmd.Flags().StringVar(&flagWorkflowVersion, "version", "", "prbot version to install (default latest)")
	workflowCmd.Flags().StringVar(&flagWorkflowProvider, "provider", "gemini", "LLM provider (gemini, openai)")
	workflowCmd.Flags().BoolVar(&flagWorkflowNoReview, "no-review", false, "Omit the code review job")
	workflowCmd.Flags().BoolVar(&flagWorkflowNoQA, "no-qa", false, "Omit the QA checklist job")
	workflowCmd.Flags().BoolVar(&flagWorkflowStdout, "stdout", false, "Print the workflow instead of writing it")
}
