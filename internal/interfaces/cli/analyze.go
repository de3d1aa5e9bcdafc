package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MedReg-Intelligence/internal/application/engine"
)

// NewAnalyzeCmd groups the corpus-level analysis commands.
func NewAnalyzeCmd(deps Deps, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run analysis over the record corpus",
	}

	cmd.AddCommand(newAnalyzeDevicesCmd(deps, opts))
	cmd.AddCommand(newAnalyzeLegalCmd(deps, opts))
	cmd.AddCommand(newAnalyzeTrendsCmd(deps, opts))
	cmd.AddCommand(newAnalyzeTimelineCmd(deps, opts))
	cmd.AddCommand(newAnalyzeAllCmd(deps, opts))

	return cmd
}

func newAnalyzeDevicesCmd(deps Deps, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Cluster records describing the same device across jurisdictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(deps, opts, func(ctx context.Context, eng engine.Engine) error {
				mappings, err := eng.MapDevicesAcrossJurisdictions(ctx)
				if err != nil {
					return err
				}
				return printResult(deps.Out, opts.OutputFormat, mappings)
			})
		},
	}
}

func newAnalyzeLegalCmd(deps Deps, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "legal",
		Short: "Analyze themes, relationships, precedents, and conflicts in the legal corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(deps, opts, func(ctx context.Context, eng engine.Engine) error {
				analysis, err := eng.AnalyzeLegalCorpus(ctx)
				if err != nil {
					return err
				}
				return printResult(deps.Out, opts.OutputFormat, analysis)
			})
		},
	}
}

func newAnalyzeTrendsCmd(deps Deps, opts *RootOptions) *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Aggregate topic trends over the trailing window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if windowDays < 0 {
				return fmt.Errorf("window-days must be non-negative, got %d", windowDays)
			}
			return withEngine(deps, opts, func(ctx context.Context, eng engine.Engine) error {
				report, err := eng.AnalyzeTrends(ctx, windowDays)
				if err != nil {
					return err
				}
				return printResult(deps.Out, opts.OutputFormat, report)
			})
		},
	}
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "trailing window in days (0 uses the configured default)")
	return cmd
}

func newAnalyzeTimelineCmd(deps Deps, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline <record-id>",
		Short: "Build the regulatory timeline anchored on a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID := args[0]
			return withEngine(deps, opts, func(ctx context.Context, eng engine.Engine) error {
				tl, err := eng.BuildTimeline(ctx, recordID)
				if err != nil {
					return err
				}
				if tl == nil {
					return fmt.Errorf("record %q not found", recordID)
				}
				return printResult(deps.Out, opts.OutputFormat, tl)
			})
		},
	}
}

func newAnalyzeAllCmd(deps Deps, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run mapping, legal, and trend analysis over one snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(deps, opts, func(ctx context.Context, eng engine.Engine) error {
				result, err := eng.AnalyzeAll(ctx)
				if err != nil {
					return err
				}
				return printResult(deps.Out, opts.OutputFormat, result)
			})
		},
	}
}
