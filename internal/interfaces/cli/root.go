// Package cli defines the medreg command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
	"github.com/turtacn/MedReg-Intelligence/internal/config"
	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// EngineFactory builds the analysis engine from loaded configuration.  The
// returned func releases the engine's resources.
type EngineFactory func(ctx context.Context, cfg *config.Config, log logging.Logger) (engine.Engine, func(), error)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Timeout      time.Duration
}

// Deps carries what the command tree needs to run.
type Deps struct {
	Factory EngineFactory
	Out     io.Writer
}

// NewRootCommand assembles the root command with all subcommands mounted.
func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "medreg",
		Short:   "MedReg-Intelligence CLI for cross-jurisdiction regulatory analysis",
		Long:    "MedReg-Intelligence resolves medical-device records across jurisdictions,\nbuilds regulatory timelines, analyzes legal case corpora, and scores records\nfor automated approval routing.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./medreg.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "json", "output format (json, text)")
	pf.DurationVar(&opts.Timeout, "timeout", 60*time.Second, "global operation timeout")

	cmd.AddCommand(NewAnalyzeCmd(deps, opts))
	cmd.AddCommand(NewEvaluateCmd(deps, opts))
	cmd.AddCommand(NewVersionCmd(deps))

	return cmd
}

// loadConfig resolves configuration from the flag path or the environment.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	return config.LoadFromEnv()
}

// newLogger builds a logger honoring the log-level flag.
func newLogger(opts *RootOptions, cfg *config.Config) (logging.Logger, error) {
	logCfg := logging.Config{
		Level:  opts.LogLevel,
		Format: cfg.Log.Format,
	}
	return logging.NewLogger(logCfg)
}

// printResult renders a value to the output writer in the selected format.
func printResult(out io.Writer, format string, v interface{}) error {
	switch format {
	case "text":
		_, err := fmt.Fprintf(out, "%+v\n", v)
		return err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// withEngine handles the config-load, logger, factory, run, cleanup cycle
// shared by every engine-backed command.
func withEngine(deps Deps, opts *RootOptions, run func(ctx context.Context, eng engine.Engine) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := newLogger(opts, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	eng, cleanup, err := deps.Factory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	return run(ctx, eng)
}
