package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dshills/prbot/internal/config"
)

// version is overridden at build time with -ldflags "-X ...cli.version=...".
var version = "0.1.0"

// Exit codes
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitUsageError = 2
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "prbot",
	Short: "AI pull request review for CI",
	Long: "prbot sends the diff of a pull request to an LLM and writes a line-anchored " +
		"code review or a QA checklist to files that a later CI step can post.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execute(ctx, os.Args[1:])
}

func execute(ctx context.Context, args []string) (code int) {
	exitCode = ExitSuccess
	defer func() {
		if r := recover(); r != nil {
			slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("unexpected panic",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			code = ExitFailure
		}
	}()

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print prbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "prbot version %s\n", version)
	},
}

// newLogger returns the run logger. Every record carries the run id so the
// lines of one CI step can be correlated.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("run_id", uuid.NewString())
}

// loadConfig resolves the effective configuration for the working directory
// and builds the run logger from it. On failure it reports the error, sets
// the exit code and returns ok == false.
func loadConfig(cmd *cobra.Command, overrides map[string]string) (cfg config.Config, log *slog.Logger, ok bool) {
	if flagVerbose {
		if overrides == nil {
			overrides = make(map[string]string)
		}
		overrides["logLevel"] = "debug"
	}

	cfg, err := config.Load(".", overrides)
	if err != nil {
		log = newLogger(cmd.ErrOrStderr(), slog.LevelInfo)
		fail(log, "invalid configuration", err)
		return config.Config{}, log, false
	}

	// Validate already accepted the level.
	level, _ := config.ParseLevel(cfg.LogLevel)
	log = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(log)
	return cfg, log, true
}

// fail logs err with its full wrapped chain and marks the run as failed.
func fail(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	exitCode = ExitFailure
}

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(qaCmd)
	rootCmd.AddCommand(prCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)
}
