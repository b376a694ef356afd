package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patientrisk/patientrisk/internal/config"
)

const deliveryTimeout = 10 * time.Second

// Summary is what gets announced after a run.
type Summary struct {
	RunID             string `json:"run_id"`
	Patients          int    `json:"patients"`
	HighRisk          int    `json:"high_risk"`
	Fever             int    `json:"fever"`
	DataQualityIssues int    `json:"data_quality_issues"`
	FetchAborted      bool   `json:"fetch_aborted"`
	Submitted         bool   `json:"submitted"`
	Error             string `json:"error,omitempty"`
}

// Text renders s as a one-line message.
func (s Summary) Text() string {
	msg := fmt.Sprintf("Risk assessment %s: %d patients, %d high risk, %d fever, %d data quality issues",
		s.RunID, s.Patients, s.HighRisk, s.Fever, s.DataQualityIssues)
	if s.FetchAborted {
		msg += " (partial fetch)"
	}
	switch {
	case s.Error != "":
		msg += ". Failed: " + s.Error
	case s.Submitted:
		msg += ". Submitted."
	default:
		msg += ". Not submitted."
	}
	return msg
}

// Notifier delivers summaries to the configured webhooks.
type Notifier struct {
	webhooks []config.WebhookConfig
	client   *http.Client
}

// New returns a Notifier for cfg. A nil client gets a default with a timeout.
func New(cfg config.NotifyConfig, client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: deliveryTimeout}
	}
	return &Notifier{webhooks: cfg.Webhooks, client: client}
}

// Notify sends s to every webhook whose URL is set. It returns the number of
// successful deliveries.
func (n *Notifier) Notify(ctx context.Context, s Summary) int {
	delivered := 0
	for _, wh := range n.webhooks {
		url := wh.URL()
		if url == "" {
			slog.Warn("notify: webhook url not set, skipping", "type", wh.Type, "url_env", wh.URLEnv)
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = n.sendSlack(ctx, url, s)
		case "teams":
			err = n.sendTeams(ctx, url, s)
		case "http":
			err = n.sendHTTP(ctx, url, s)
		default:
			slog.Warn("notify: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("notify: webhook delivery failed", "type", wh.Type, "run_id", s.RunID, "err", err)
			continue
		}
		delivered++
		slog.Debug("notify: webhook delivered", "type", wh.Type, "run_id", s.RunID)
	}
	return delivered
}

func (n *Notifier) sendSlack(ctx context.Context, url string, s Summary) error {
	body, _ := json.Marshal(map[string]string{"text": s.Text()})
	return n.post(ctx, url, body)
}

func (n *Notifier) sendTeams(ctx context.Context, url string, s Summary) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": themeColor(s),
		"summary":    "Risk assessment " + s.RunID,
		"title":      "Patient risk assessment",
		"text":       s.Text(),
	}
	body, _ := json.Marshal(payload)
	return n.post(ctx, url, body)
}

func (n *Notifier) sendHTTP(ctx context.Context, url string, s Summary) error {
	body, _ := json.Marshal(map[string]interface{}{"summary": s})
	return n.post(ctx, url, body)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func themeColor(s Summary) string {
	switch {
	case s.Error != "":
		return "FF4F6A"
	case s.HighRisk > 0 || s.FetchAborted:
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
