package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/patientrisk/patientrisk/internal/config"
	"github.com/patientrisk/patientrisk/pkg/types"
)

// maxResponseBytes bounds how much of the service response is read.
const maxResponseBytes = 1 << 20

// ErrRejected is wrapped when the service answers with a non-2xx status.
var ErrRejected = errors.New("submission rejected")

// Response is the service's answer to a submission.
type Response struct {
	Status int

	// Body is the raw JSON returned by the service.
	Body json.RawMessage
}

// Submitter sends assessments to the service.
type Submitter struct {
	client   *http.Client
	endpoint string
}

// New returns a Submitter posting to api.BaseURL using client.
// client is expected to add the API key (see transport.NewClient).
func New(client *http.Client, api config.APIConfig) *Submitter {
	return &Submitter{
		client:   client,
		endpoint: strings.TrimRight(api.BaseURL, "/") + "/submit-assessment",
	}
}

// Submit posts a once and returns the parsed response.
func (s *Submitter) Submit(ctx context.Context, a types.Assessment) (*Response, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("submitter: encode assessment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("submitter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitter: http post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("submitter: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("submitter: submission rejected",
			"status", resp.StatusCode,
			"response", logValue(raw),
		)
		return nil, fmt.Errorf("submitter: %w: status %d: %s",
			ErrRejected, resp.StatusCode, snippet(raw))
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("submitter: response is not JSON: %s", snippet(raw))
	}

	out := &Response{Status: resp.StatusCode, Body: json.RawMessage(raw)}
	slog.Info("submitter: submission response",
		"status", out.Status,
		"response", out.Body,
	)
	return out, nil
}

// logValue keeps a JSON body as structured JSON in the log line and falls
// back to the raw text otherwise.
func logValue(b []byte) any {
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return string(b)
}

// snippet trims a response body for error messages.
func snippet(b []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
