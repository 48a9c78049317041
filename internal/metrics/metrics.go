// Package metrics records a run summary in a private Prometheus registry and
// writes it out in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TextfileName is the file written into the output directory.
const TextfileName = "passlog.prom"

// Run holds the gauges of one analysis run.
type Run struct {
	reg *prometheus.Registry

	rowsIngested     prometheus.Gauge
	malformedLines   prometheus.Gauge
	duplicates       prometheus.Gauge
	inViewRows       prometheus.Gauge
	satelliteFailure *prometheus.GaugeVec
	passes           *prometheus.GaugeVec
	fragments        *prometheus.GaugeVec
	ratio            prometheus.Gauge
	chartsWritten    prometheus.Gauge
	duration         prometheus.Gauge
	lastRun          prometheus.Gauge
}

// NewRun creates the run gauges in a fresh registry.
func NewRun() *Run {
	r := &Run{
		reg: prometheus.NewRegistry(),
		rowsIngested: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_rows_ingested",
			Help: "Housekeeping rows parsed from the input logs.",
		}),
		malformedLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_malformed_lines",
			Help: "Marked log lines that did not decode into a record.",
		}),
		duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_duplicate_rows_dropped",
			Help: "Rows dropped because their timestamp was already seen.",
		}),
		inViewRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_in_view_rows",
			Help: "Rows logged during a satellite pass.",
		}),
		satelliteFailure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "passlog_satellite_failed",
			Help: "1 if the satellite could not be processed, else 0.",
		}, []string{"satellite"}),
		passes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "passlog_passes",
			Help: "Passes found per satellite over the observation window.",
		}, []string{"satellite"}),
		fragments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "passlog_fragments",
			Help: "Corrected fragment totals over the observation window.",
		}, []string{"counter"}),
		ratio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_sent_ack_ratio",
			Help: "Sent over acknowledged fragments; NaN when nothing was acknowledged.",
		}),
		chartsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_charts_written",
			Help: "Charts rendered successfully.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_run_duration_seconds",
			Help: "Wall time of the run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "passlog_last_run_timestamp_seconds",
			Help: "Unix time the run finished.",
		}),
	}

	r.reg.MustRegister(
		r.rowsIngested, r.malformedLines, r.duplicates, r.inViewRows,
		r.satelliteFailure, r.passes, r.fragments, r.ratio,
		r.chartsWritten, r.duration, r.lastRun,
	)
	return r
}

func (r *Run) SetIngest(rows, malformed int) {
	r.rowsIngested.Set(float64(rows))
	r.malformedLines.Set(float64(malformed))
}

func (r *Run) SetDuplicates(n int) { r.duplicates.Set(float64(n)) }

func (r *Run) SetInView(n int) { r.inViewRows.Set(float64(n)) }

// SetSatellite records the outcome for one satellite.
func (r *Run) SetSatellite(name string, passes int, failed bool) {
	r.passes.WithLabelValues(name).Set(float64(passes))
	v := 0.0
	if failed {
		v = 1
	}
	r.satelliteFailure.WithLabelValues(name).Set(v)
}

// SetFragments records corrected totals. ratioDefined false exports NaN.
func (r *Run) SetFragments(sent, ack, ratio float64, ratioDefined bool) {
	r.fragments.WithLabelValues("sent").Set(sent)
	r.fragments.WithLabelValues("ack").Set(ack)
	if !ratioDefined {
		ratio = math.NaN()
	}
	r.ratio.Set(ratio)
}

func (r *Run) SetChartsWritten(n int) { r.chartsWritten.Set(float64(n)) }

// Finish stamps the run duration and completion time.
func (r *Run) Finish(start, end time.Time) {
	r.duration.Set(end.Sub(start).Seconds())
	r.lastRun.Set(float64(end.Unix()))
}

// WriteTextfile writes all gauges to path atomically.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
