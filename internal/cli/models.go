package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
	"github.com/dshills/prbot/internal/output"
	"github.com/dshills/prbot/internal/providers"
)

const doctorTimeout = 30 * time.Second

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Provider and model management",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known models and their prices",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, ok := loadConfig(cmd, nil)
		if !ok {
			return
		}
		writeModelList(cmd, cfg)
	},
}

func writeModelList(cmd *cobra.Command, cfg config.Config) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tMODEL\tINPUT $/1M\tOUTPUT $/1M\t")
	for _, m := range output.Pricing {
		mark := ""
		if providers.Canonical(cfg.Provider) == m.Provider && cfg.Model == m.Model {
			mark = "(default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.2f\t%s\n", m.Provider, m.Model, m.Rates.InputPerM, m.Rates.OutputPerM, mark)
	}
	tw.Flush()

	if _, ok := output.LookupRates(cfg.Model); !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "\nConfigured model %s has no known price; reports will omit the cost.\n", cfg.Model)
	}
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate provider credentials",
	Run: func(cmd *cobra.Command, args []string) {
		overrides := make(map[string]string)
		if flagProvider != "" {
			overrides["provider"] = flagProvider
		}
		if flagModel != "" {
			overrides["model"] = flagModel
		}
		cfg, log, ok := loadConfig(cmd, overrides)
		if !ok {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checking %s (%s)...\n", cfg.Provider, cfg.Model)

		apiKey, err := config.ResolveCredential(cfg.Provider)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL: %v\n", err)
			exitCode = ExitFailure
			return
		}

		var opts []providers.Option
		if cfg.ProviderURL != "" {
			opts = append(opts, providers.WithBaseURL(cfg.ProviderURL))
		}
		gen, err := providers.New(cfg.Provider, cfg.Model, apiKey, opts...)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL: %v\n", err)
			exitCode = ExitFailure
			return
		}
		defer gen.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
		defer cancel()

		resp, err := gen.Generate(ctx, "Respond with exactly: ok")
		if err != nil {
			if providers.IsAuthError(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL: the API key was rejected: %v\n", err)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL: %v\n", err)
			}
			exitCode = ExitFailure
			return
		}
		log.Debug("doctor response", "text", strings.TrimSpace(resp.Text), "input_tokens", resp.Usage.InputTokens)

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s is configured and responding\n", cfg.Provider)
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
