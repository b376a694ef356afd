package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/patientrisk/patientrisk/internal/compute"
	"github.com/patientrisk/patientrisk/internal/config"
	"github.com/patientrisk/patientrisk/internal/fetcher"
	"github.com/patientrisk/patientrisk/internal/metrics"
	"github.com/patientrisk/patientrisk/internal/notify"
	"github.com/patientrisk/patientrisk/internal/submitter"
	"github.com/patientrisk/patientrisk/internal/transport"
	"github.com/patientrisk/patientrisk/pkg/types"
)

// Options configures one run.
type Options struct {
	Config *config.Config

	// APIKey is the resolved service credential.
	APIKey string

	// DryRun skips submission regardless of Config.Submit.Enabled.
	DryRun bool

	// Client overrides the HTTP client built from Config and APIKey.
	Client *http.Client

	// Notifier overrides the webhook notifier built from Config.
	Notifier *notify.Notifier
}

// Result describes a finished run.
type Result struct {
	RunID      string
	Rule       compute.Rule
	Started    time.Time
	Duration   time.Duration
	Patients   int
	Fetch      fetcher.Stats
	Assessment types.Assessment
	Submitted  bool
	Response   *submitter.Response
}

// Run executes the pipeline once. The returned Result is non-nil whenever
// the configuration was usable, even if err is set.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: no config")
	}
	rule, err := compute.ParseRule(cfg.Scoring.HighRiskRule)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = transport.NewClient(cfg.API, opts.APIKey)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.New(cfg.Notify, nil)
	}

	res := &Result{
		RunID:   uuid.NewString(),
		Rule:    rule,
		Started: time.Now(),
	}
	log := slog.With("run_id", res.RunID)
	log.Info("pipeline: run starting", "base_url", cfg.API.BaseURL, "rule", rule, "dry_run", opts.DryRun)

	runErr := run(ctx, log, client, cfg, opts.DryRun, res)
	res.Duration = time.Since(res.Started)

	finish(ctx, log, cfg, notifier, res, runErr)
	return res, runErr
}

// run performs fetch → classify → submit, filling res as it goes.
func run(ctx context.Context, log *slog.Logger, client *http.Client, cfg *config.Config, dryRun bool, res *Result) error {
	patients, st, err := fetcher.New(client, cfg.API, cfg.Fetch).FetchAll(ctx)
	res.Fetch = st
	res.Patients = len(patients)
	if err != nil {
		return fmt.Errorf("pipeline: fetch: %w", err)
	}
	log.Info("pipeline: fetched patients",
		"patients", len(patients),
		"pages", st.Pages,
		"rate_limited", st.RateLimited,
		"transient_errors", st.TransientErrors,
		"aborted", st.Aborted,
	)

	res.Assessment = compute.Classify(patients, res.Rule)
	if log.Enabled(ctx, slog.LevelDebug) {
		for _, p := range patients {
			ev := compute.Evaluate(p, res.Rule)
			log.Debug("pipeline: patient evaluated",
				"patient_id", ev.ID,
				"bp_score", ev.BloodPressure,
				"temp_score", ev.Temperature,
				"age_score", ev.Age,
				"high_risk", ev.HighRisk,
				"fever", ev.Fever,
				"issues", ev.Issues,
			)
		}
	}
	log.Info("pipeline: prepared results",
		"high_risk", len(res.Assessment.HighRiskPatients),
		"fever", len(res.Assessment.FeverPatients),
		"data_quality_issues", len(res.Assessment.DataQualityIssues),
	)

	if path := cfg.Output.ResultsFile; path != "" {
		if err := writeResults(path, res.Assessment); err != nil {
			log.Error("pipeline: could not write results file", "path", path, "err", err)
		} else {
			log.Info("pipeline: results written", "path", path)
		}
	}

	if dryRun || !cfg.Submit.Enabled {
		log.Info("pipeline: submission skipped", "dry_run", dryRun)
		return nil
	}

	resp, err := submitter.New(client, cfg.API).Submit(ctx, res.Assessment)
	if err != nil {
		return err
	}
	res.Submitted = true
	res.Response = resp
	return nil
}

// finish writes the metrics report and sends notifications. Failures here
// are logged only.
func finish(ctx context.Context, log *slog.Logger, cfg *config.Config, n *notify.Notifier, res *Result, runErr error) {
	if path := cfg.Output.MetricsFile; path != "" {
		status := 0
		if res.Response != nil {
			status = res.Response.Status
		}
		rep := metrics.Report{
			RunID:        res.RunID,
			Rule:         string(res.Rule),
			Started:      res.Started,
			Duration:     res.Duration,
			Fetch:        res.Fetch,
			Assessment:   res.Assessment,
			SubmitStatus: status,
			Success:      runErr == nil,
		}
		if err := metrics.WriteFile(path, rep); err != nil {
			log.Error("pipeline: could not write metrics file", "path", path, "err", err)
		}
	}

	sum := notify.Summary{
		RunID:             res.RunID,
		Patients:          res.Patients,
		HighRisk:          len(res.Assessment.HighRiskPatients),
		Fever:             len(res.Assessment.FeverPatients),
		DataQualityIssues: len(res.Assessment.DataQualityIssues),
		FetchAborted:      res.Fetch.Aborted,
		Submitted:         res.Submitted,
	}
	if runErr != nil {
		sum.Error = runErr.Error()
	}
	n.Notify(ctx, sum)

	if runErr != nil {
		log.Error("pipeline: run failed", "duration", res.Duration, "err", runErr)
		return
	}
	log.Info("pipeline: run complete", "duration", res.Duration, "submitted", res.Submitted)
}

// writeResults stores a as indented JSON.
func writeResults(path string, a types.Assessment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
