package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/patientrisk/patientrisk/internal/fetcher"
	"github.com/patientrisk/patientrisk/pkg/types"
)

const namespace = "patientrisk"

// Report is everything known about one run once it has finished.
type Report struct {
	RunID        string
	Rule         string
	Started      time.Time
	Duration     time.Duration
	Fetch        fetcher.Stats
	Assessment   types.Assessment
	SubmitStatus int // 0 when submission was skipped
	Success      bool
}

// Families builds the metric families for r, in a stable order.
func Families(r Report) []*dto.MetricFamily {
	aborted := 0.0
	reason := "none"
	if r.Fetch.Aborted {
		aborted = 1
		reason = r.Fetch.AbortReason
	}

	return []*dto.MetricFamily{
		gauge("run_info", "Identifies the run that produced this report.", 1,
			label("rule", r.Rule), label("run_id", r.RunID)),
		gauge("run_timestamp_seconds", "Unix time at which the run started.",
			float64(r.Started.UnixNano())/1e9),
		gauge("run_duration_seconds", "Wall-clock duration of the run.", r.Duration.Seconds()),
		gauge("run_success", "Whether every stage of the run completed.", boolf(r.Success)),
		gauge("fetch_pages", "Listing pages fetched successfully.", float64(r.Fetch.Pages)),
		gauge("fetch_records", "Patient records fetched.", float64(r.Fetch.Records)),
		counter("fetch_rate_limited_total", "Listing responses with HTTP 429.", float64(r.Fetch.RateLimited)),
		counter("fetch_transient_errors_total", "Failed listing attempts other than rate limiting.",
			float64(r.Fetch.TransientErrors)),
		gauge("fetch_aborted", "Whether the fetch stopped before the last page.", aborted,
			label("reason", reason)),
		classified(r.Assessment),
		gauge("submit_status_code", "HTTP status of the submission, 0 when skipped.",
			float64(r.SubmitStatus)),
	}
}

// Write encodes r in the Prometheus text format.
func Write(w io.Writer, r Report) error {
	for _, mf := range Families(r) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteFile writes r to path, replacing any previous report atomically.
func WriteFile(path string, r Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("metrics: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("metrics: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := Write(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("metrics: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("metrics: rename: %w", err)
	}
	return nil
}

func classified(a types.Assessment) *dto.MetricFamily {
	name := namespace + "_patients_classified"
	help := "Patients in each submitted category."
	counts := []struct {
		category string
		n        int
	}{
		{"high_risk", len(a.HighRiskPatients)},
		{"fever", len(a.FeverPatients)},
		{"data_quality", len(a.DataQualityIssues)},
	}

	mf := &dto.MetricFamily{Name: &name, Help: &help, Type: dto.MetricType_GAUGE.Enum()}
	for _, c := range counts {
		v := float64(c.n)
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label: []*dto.LabelPair{label("category", c.category)},
			Gauge: &dto.Gauge{Value: &v},
		})
	}
	return mf
}

func gauge(name, help string, v float64, labels ...*dto.LabelPair) *dto.MetricFamily {
	name = namespace + "_" + name
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Label: labels, Gauge: &dto.Gauge{Value: &v}}},
	}
}

func counter(name, help string, v float64) *dto.MetricFamily {
	name = namespace + "_" + name
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: &v}}},
	}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: &name, Value: &value}
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
