// Package pipeline runs one analysis over a set of terminal logs: ingest,
// trim, correlate with satellite passes, derive statistics, draw charts and
// write the run metrics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/star/passlog/internal/config"
	"github.com/star/passlog/internal/correlate"
	"github.com/star/passlog/internal/metrics"
	"github.com/star/passlog/internal/orbit"
	"github.com/star/passlog/internal/passes"
	"github.com/star/passlog/internal/render"
	"github.com/star/passlog/internal/stats"
	"github.com/star/passlog/internal/telemetry"
	"github.com/star/passlog/internal/tle"
	"github.com/star/passlog/internal/transform"
)

// ErrNoRows is returned when no housekeeping row survives the observation
// window.
var ErrNoRows = errors.New("no housekeeping rows in the observation window")

// Report summarizes a finished run.
type Report struct {
	Ingest     telemetry.Report
	Trimmed    int // rows outside the observation window
	Duplicates int
	Rows       int
	InView     int
	Passes     map[string][]passes.Pass
	Failed     []string
	Sent, Ack  []stats.Daily
	Summary    stats.Summary
	Charts     int
}

// NewSource builds the TLE-backed orbit source for the configured station.
func NewSource(cfg *config.Config, logger *slog.Logger) orbit.Source {
	loader := tle.NewLoader(cfg.LoaderConfig(), logger)
	station := transform.NewStation(cfg.Station.Latitude, cfg.Station.Longitude, cfg.Station.AltitudeM)
	return orbit.NewOracle(loader, station, cfg.Thresholds.MinElevation, logger)
}

// Run executes the analysis described by cfg, resolving satellites through
// src. Charts and the metrics textfile go to cfg.Output.Dir.
func Run(ctx context.Context, cfg *config.Config, src orbit.Source, logger *slog.Logger) (*Report, error) {
	started := time.Now()
	logger = logger.With("component", "pipeline")
	m := metrics.NewRun()
	rep := &Report{}

	table, ingest, err := telemetry.ReadGlob(cfg.InputPattern(), cfg.Input.Marker, logger)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	rep.Ingest = ingest
	m.SetIngest(ingest.Rows, ingest.Malformed)
	logger.Info("logs ingested",
		"files", ingest.Files,
		"rows", ingest.Rows,
		"malformed", ingest.Malformed,
	)

	rep.Trimmed = table.Window(cfg.Window.Start, cfg.Window.End)
	table.SortByTime()
	if table.Len() == 0 {
		return nil, ErrNoRows
	}
	logger.Info("observation window applied",
		"rows", table.Len(),
		"trimmed", rep.Trimmed,
		"first", table.First().Format(time.RFC3339),
		"last", table.Last().Format(time.RFC3339),
		"span", table.Span().String(),
	)
	for file, n := range table.RowsBySource() {
		logger.Debug("rows in window", "file", file, "rows", n)
	}

	res, err := correlate.Correlate(ctx, table, cfg.Satellites, src, logger)
	if err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}
	rep.Duplicates = res.Dropped
	rep.Rows = len(res.Rows)
	rep.Passes = res.Passes
	rep.Failed = res.Failed
	m.SetDuplicates(res.Dropped)

	failed := make(map[string]bool, len(res.Failed))
	for _, name := range res.Failed {
		failed[name] = true
	}
	for _, name := range cfg.Satellites {
		m.SetSatellite(name, len(res.Passes[name]), failed[name])
	}

	rssi := make([]float64, len(res.Rows))
	for i, r := range res.Rows {
		rssi[i] = r.PeakRSSI
	}
	smoothed := stats.Smooth(rssi, cfg.Smoothing.Window)

	inView := stats.InView(res.Rows, cfg.Thresholds.MinElevation, cfg.Thresholds.RSSIDetect)
	rep.InView = len(inView)
	m.SetInView(len(inView))

	rep.Sent = stats.DailyFragments(res.Rows, inView, stats.Sent)
	rep.Ack = stats.DailyFragments(res.Rows, inView, stats.Ack)
	rep.Summary = stats.Summarize(rep.Sent, rep.Ack)
	rep.Summary.Start, rep.Summary.End = table.First(), table.Last()
	m.SetFragments(rep.Summary.Sent, rep.Summary.Ack, rep.Summary.Ratio.Value, rep.Summary.Ratio.Defined)

	logger.Info("fragments",
		"in_view_rows", rep.InView,
		"sent", rep.Summary.Sent,
		"ack", rep.Summary.Ack,
		"ratio", rep.Summary.Ratio.String(),
		"span_hours", rep.Summary.Span().Hours(),
	)

	r, err := render.New(render.Options{
		Dir:          cfg.Output.Dir,
		Width:        cfg.Output.Width,
		Height:       cfg.Output.Height,
		MinElevation: cfg.Thresholds.MinElevation,
		RSSIMin:      cfg.Thresholds.RSSIDetect,
		RSSIMax:      cfg.Thresholds.RSSIMaxDisplay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	rep.Charts = r.All(render.Input{
		Rows:       res.Rows,
		InView:     inView,
		Smoothed:   smoothed,
		Satellites: cfg.Satellites,
		Sent:       rep.Sent,
		Ack:        rep.Ack,
		Summary:    rep.Summary,
	})
	m.SetChartsWritten(rep.Charts)

	m.Finish(started, time.Now())
	path := filepath.Join(cfg.Output.Dir, metrics.TextfileName)
	if err := m.WriteTextfile(path); err != nil {
		logger.Warn("metrics not written", "path", path, "error", err)
	}

	logger.Info("run complete",
		"charts", rep.Charts,
		"failed_satellites", len(rep.Failed),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return rep, nil
}
