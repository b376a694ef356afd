package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patientrisk/patientrisk/internal/config"
	"github.com/patientrisk/patientrisk/internal/fetcher"
	"github.com/patientrisk/patientrisk/internal/mockapi"
	"github.com/patientrisk/patientrisk/internal/pipeline"
	"github.com/patientrisk/patientrisk/internal/submitter"
	"github.com/patientrisk/patientrisk/pkg/types"
)

const apiKey = "pipeline-test-key"

func newMock(t *testing.T, faults mockapi.Faults) (*mockapi.Server, *config.Config) {
	t.Helper()
	mock := mockapi.New(mockapi.Options{APIKey: apiKey, Faults: faults})
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)
	return mock, fastConfig(srv.URL + "/api")
}

// fastConfig shrinks every delay so fault-injection runs finish quickly.
func fastConfig(base string) *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = base
	cfg.Fetch.RetryDelay = time.Millisecond
	cfg.Fetch.RateLimit.Initial = time.Millisecond
	cfg.Fetch.RateLimit.Max = 4 * time.Millisecond
	return cfg
}

type hookRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (h *hookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.bodies = append(h.bodies, string(b))
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (h *hookRecorder) all() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.bodies...)
}

func TestRun_SubmitsExpectedAssessment(t *testing.T) {
	mock, cfg := newMock(t, mockapi.Faults{})

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.NoError(t, err)

	assert.Equal(t, 23, res.Patients)
	assert.Equal(t, 3, res.Fetch.Pages)
	assert.False(t, res.Fetch.Aborted)
	assert.True(t, res.Submitted)
	require.NotNil(t, res.Response)
	assert.Equal(t, http.StatusOK, res.Response.Status)
	assert.NotEmpty(t, res.RunID)

	subs := mock.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, mock.Expected(), subs[0])
	assert.Equal(t, mock.Expected(), res.Assessment)

	var body mockapi.SubmitResponse
	require.NoError(t, json.Unmarshal(res.Response.Body, &body))
	assert.InDelta(t, 100.0, body.Results.Score, 0.001)
	assert.Equal(t, "PASS", body.Results.Status)
}

func TestRun_RecoversFromInjectedFaults(t *testing.T) {
	mock, cfg := newMock(t, mockapi.Faults{RateLimitEvery: 3, ErrorEvery: 5, MalformedEvery: 7})
	cfg.Fetch.PageSize = 2

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.NoError(t, err)

	assert.False(t, res.Fetch.Aborted)
	assert.Equal(t, 23, res.Patients)
	assert.Equal(t, 12, res.Fetch.Pages)
	assert.Positive(t, res.Fetch.RateLimited)
	assert.Positive(t, res.Fetch.TransientErrors)
	require.Len(t, mock.Submissions(), 1)
	assert.Equal(t, mock.Expected(), mock.Submissions()[0])
}

func TestRun_AbortedFetchStillSubmits(t *testing.T) {
	mock, cfg := newMock(t, mockapi.Faults{ErrorEvery: 1})

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.NoError(t, err)

	assert.True(t, res.Fetch.Aborted)
	assert.Equal(t, fetcher.AbortMaxRetries, res.Fetch.AbortReason)
	assert.Equal(t, cfg.Fetch.MaxRetries, mock.ListingRequests())
	assert.Zero(t, res.Patients)

	subs := mock.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, types.NewAssessment(), subs[0])
}

func TestRun_DryRunSkipsSubmission(t *testing.T) {
	mock, cfg := newMock(t, mockapi.Faults{})

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey, DryRun: true})
	require.NoError(t, err)

	assert.False(t, res.Submitted)
	assert.Nil(t, res.Response)
	assert.Empty(t, mock.Submissions())
	assert.Equal(t, mock.Expected(), res.Assessment)
}

func TestRun_SubmitDisabledInConfig(t *testing.T) {
	mock, cfg := newMock(t, mockapi.Faults{})
	cfg.Submit.Enabled = false

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.NoError(t, err)
	assert.False(t, res.Submitted)
	assert.Empty(t, mock.Submissions())
}

func TestRun_WrongKeyFailsSubmission(t *testing.T) {
	mock, cfg := newMock(t, mockapi.Faults{})
	cfg.Fetch.MaxRetries = 2

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, submitter.ErrRejected))
	assert.True(t, res.Fetch.Aborted)
	assert.False(t, res.Submitted)
	assert.Empty(t, mock.Submissions())
}

func TestRun_CumulativeRule(t *testing.T) {
	_, cfg := newMock(t, mockapi.Faults{})
	cfg.Scoring.HighRiskRule = "cumulative"
	cfg.Submit.Enabled = false

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.NoError(t, err)
	assert.Equal(t, "cumulative", string(res.Rule))
}

func TestRun_InvalidRule(t *testing.T) {
	cfg := fastConfig("http://127.0.0.1:0/api")
	cfg.Scoring.HighRiskRule = "strict"

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg})
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestRun_WritesArtefactsAndNotifies(t *testing.T) {
	_, cfg := newMock(t, mockapi.Faults{})

	dir := t.TempDir()
	cfg.Output.ResultsFile = filepath.Join(dir, "out", "results.json")
	cfg.Output.MetricsFile = filepath.Join(dir, "patientrisk.prom")

	hook := &hookRecorder{}
	hookSrv := httptest.NewServer(hook)
	t.Cleanup(hookSrv.Close)
	t.Setenv("PIPELINE_TEST_HOOK", hookSrv.URL)
	cfg.Notify.Webhooks = []config.WebhookConfig{{Type: "http", URLEnv: "PIPELINE_TEST_HOOK"}}

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.NoError(t, err)

	raw, err := os.ReadFile(cfg.Output.ResultsFile)
	require.NoError(t, err)
	var written types.Assessment
	require.NoError(t, json.Unmarshal(raw, &written))
	assert.Equal(t, res.Assessment, written)

	prom, err := os.ReadFile(cfg.Output.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "patientrisk_run_success 1")
	assert.Contains(t, string(prom), res.RunID)
	assert.Contains(t, string(prom), "patientrisk_submit_status_code 200")

	bodies := hook.all()
	require.Len(t, bodies, 1)
	assert.True(t, strings.Contains(bodies[0], `"run_id":"`+res.RunID+`"`), bodies[0])
	assert.Contains(t, bodies[0], `"submitted":true`)
}

func TestRun_FailedSubmissionRecordedInMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/patients":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"data":[{"patient_id":"A1","blood_pressure":"150/95","temperature":98.6,"age":40}],"pagination":{"hasNext":false}}`)
		default:
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := fastConfig(srv.URL + "/api")
	cfg.Output.MetricsFile = filepath.Join(t.TempDir(), "run.prom")

	res, err := pipeline.Run(context.Background(), pipeline.Options{Config: cfg, APIKey: apiKey})
	require.ErrorIs(t, err, submitter.ErrRejected)
	assert.Equal(t, []types.PatientID{"A1"}, res.Assessment.HighRiskPatients)

	prom, err := os.ReadFile(cfg.Output.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "patientrisk_run_success 0")
}

func TestRun_CanceledContext(t *testing.T) {
	_, cfg := newMock(t, mockapi.Faults{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := pipeline.Run(ctx, pipeline.Options{Config: cfg, APIKey: apiKey})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, res.Submitted)
}
