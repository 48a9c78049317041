package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/star/passlog/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis and write charts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		rep, err := pipeline.Run(cmd.Context(), cfg, pipeline.NewSource(cfg, logger), logger)
		if err != nil {
			logger.Error("analysis failed", "error", err)
			return err
		}

		s := rep.Summary
		fmt.Fprintf(cmd.OutOrStdout(), "Sent fragments %.0f - ACK fragments %.0f - Ratio: %s\n", s.Sent, s.Ack, s.Ratio)
		fmt.Fprintf(cmd.OutOrStdout(), "Observation window: %s - %s (%.1fH)\n",
			s.Start.Format("2006-01-02 15:04:05"), s.End.Format("2006-01-02 15:04:05"), s.Span().Hours())
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows, %d in view, %d charts in %s\n", rep.Rows, rep.InView, rep.Charts, cfg.Output.Dir)
		for _, name := range rep.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped satellite %s\n", name)
		}
		return nil
	},
}
