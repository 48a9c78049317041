package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/passlog/internal/passes"
	"github.com/star/passlog/internal/pipeline"
)

var passesSatellite string

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List satellite passes over the observation window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		start, end := cfg.Window.Start, cfg.Window.End
		if start.IsZero() || end.IsZero() {
			return fmt.Errorf("passes needs a closed observation window")
		}

		sats := cfg.Satellites
		if passesSatellite != "" {
			sats = []string{passesSatellite}
		}

		src := pipeline.NewSource(cfg, logger)
		var all []passes.Pass
		for _, sat := range sats {
			eph, err := src.Ephemeris(cmd.Context(), sat)
			if err != nil {
				logger.Warn("satellite skipped", "satellite", sat, "error", err)
				continue
			}
			ps, err := eph.Passes(start, end)
			if err != nil {
				logger.Warn("satellite skipped", "satellite", sat, "error", err)
				continue
			}
			all = append(all, ps...)
		}

		return writePassTable(cmd.OutOrStdout(), all)
	},
}

func init() {
	passesCmd.Flags().StringVarP(&passesSatellite, "satellite", "s", "", "only list passes of this satellite")
}

func writePassTable(w io.Writer, ps []passes.Pass) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SATELLITE\tAOS\tAZ\tMAX\tEL\tAZ\tLOS\tAZ\tDURATION")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%.1f\t%.0f\t%s\t%.0f\t%s\n",
			p.Satellite,
			p.AOS.Format(time.RFC3339), p.AOSAzimuth,
			p.Max.Format(time.RFC3339), p.MaxElevation, p.MaxAzimuth,
			p.LOS.Format(time.RFC3339), p.LOSAzimuth,
			p.Duration.Round(time.Second),
		)
	}
	return tw.Flush()
}
