// Command passlog analyses satellite-terminal housekeeping logs against the
// passes of the satellites the terminal talks to.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/star/passlog/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	outputDir  string
	offline    bool
)

var rootCmd = &cobra.Command{
	Use:   "passlog",
	Short: "Correlate terminal housekeeping logs with satellite passes",
	Long: `passlog reads satellite-terminal housekeeping logs, works out which
satellite was in view of the terminal for every logged epoch and renders
signal and fragment statistics as charts.

Configuration is read from an optional YAML file, a .env file and
PASSLOG_* environment variables, in that order. Flags win over all three.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for charts and metrics")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use cached element sets only")

	rootCmd.AddCommand(analyzeCmd, passesCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the passlog version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "passlog", version)
	},
}

// setup loads the configuration, applies flag overrides and returns the run
// logger tagged with a fresh run id.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	boot := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	config.LoadDotEnv(boot)

	cfg, err := config.Load(configPath, boot)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if cmd.Flags().Changed("offline") {
		cfg.TLE.Offline = offline
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg.Log).With("run_id", uuid.NewString())
	logger.Info("configuration loaded",
		"config", configPath,
		"input", cfg.InputPattern(),
		"satellites", len(cfg.Satellites),
		"output", cfg.Output.Dir,
		"offline", cfg.TLE.Offline,
		"version", version,
	)
	return cfg, logger, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
