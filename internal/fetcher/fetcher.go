package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patientrisk/patientrisk/internal/config"
	"github.com/patientrisk/patientrisk/pkg/types"
)

// maxPageBytes bounds how much of a listing response is read.
const maxPageBytes = 8 << 20

// Reasons reported in Stats.AbortReason.
const (
	AbortMaxRetries  = "max_retries"
	AbortRateLimited = "rate_limited"
	AbortCanceled    = "canceled"
)

// Stats summarises one FetchAll call.
type Stats struct {
	Pages           int
	Records         int
	RateLimited     int // 429 responses seen
	TransientErrors int // all other failed attempts
	Aborted         bool
	AbortReason     string
	LastPage        int // page being requested when the fetch ended
	Duration        time.Duration
}

// Fetcher pages through the listing endpoint.
type Fetcher struct {
	client     *http.Client
	endpoint   string
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	rateLimit  config.RateLimitConfig

	// sleep and now are injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New returns a Fetcher that lists patients from api.BaseURL using client.
// client is expected to add the API key (see transport.NewClient).
func New(client *http.Client, api config.APIConfig, fc config.FetchConfig) *Fetcher {
	return &Fetcher{
		client:     client,
		endpoint:   strings.TrimRight(api.BaseURL, "/") + "/patients",
		pageSize:   fc.PageSize,
		maxRetries: fc.MaxRetries,
		retryDelay: fc.RetryDelay,
		rateLimit:  fc.RateLimit,
		sleep:      sleepCtx,
		now:        time.Now,
	}
}

// FetchAll requests pages sequentially and returns every record received.
//
// The returned error is non-nil only when ctx is cancelled; the records
// gathered before cancellation are still returned.
func (f *Fetcher) FetchAll(ctx context.Context) ([]types.Patient, Stats, error) {
	start := f.now()
	var (
		patients []types.Patient
		st       Stats
		page     = 1
		retries  int
		limited  int
	)
	bo := newBackoff(f.rateLimit)

	finish := func(reason string) {
		st.Records = len(patients)
		st.LastPage = page
		st.Duration = f.now().Sub(start)
		if reason != "" {
			st.Aborted = true
			st.AbortReason = reason
		}
	}

	for {
		recs, hasNext, err := f.fetchPage(ctx, page)
		if err == nil {
			patients = append(patients, recs...)
			st.Pages++
			retries, limited = 0, 0
			bo.reset()
			slog.Debug("fetcher: page fetched",
				"page", page, "records", len(recs), "has_next", hasNext)
			if !hasNext {
				finish("")
				return patients, st, nil
			}
			page++
			continue
		}

		if ctx.Err() != nil {
			finish(AbortCanceled)
			return patients, st, ctx.Err()
		}

		var wait time.Duration
		if errors.Is(err, ErrRateLimited) {
			st.RateLimited++
			limited++
			if limited >= f.rateLimit.MaxAttempts {
				slog.Error("fetcher: rate limited too many times, stopping with partial data",
					"page", page, "attempts", limited, "records", len(patients))
				finish(AbortRateLimited)
				return patients, st, nil
			}
			wait = bo.next()
			var se *StatusError
			if errors.As(err, &se) && se.RetryAfter > 0 {
				wait = bo.limit(se.RetryAfter)
			}
			slog.Warn("fetcher: rate limited, backing off",
				"page", page, "attempt", limited, "retry_in", wait)
		} else {
			st.TransientErrors++
			retries++
			if retries >= f.maxRetries {
				slog.Error("fetcher: max retries reached, stopping with partial data",
					"page", page, "retries", retries, "records", len(patients), "err", err)
				finish(AbortMaxRetries)
				return patients, st, nil
			}
			wait = f.retryDelay
			slog.Warn("fetcher: page failed, retrying",
				"page", page, "retry", retries, "retry_in", wait, "err", err)
		}

		if err := f.sleep(ctx, wait); err != nil {
			finish(AbortCanceled)
			return patients, st, err
		}
	}
}

// fetchPage performs one GET for page and decodes the envelope.
func (f *Fetcher) fetchPage(ctx context.Context, page int) ([]types.Patient, bool, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, false, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(f.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		return nil, false, &StatusError{
			Code:       resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), f.now()),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, false, fmt.Errorf("read body: %w", err)
	}
	return decodePage(body)
}

// decodePage validates a listing body. data must be a JSON array and
// pagination must be present; anything else is ErrMalformedPage. Records are
// decoded one by one; a null or non-object element is skipped.
func decodePage(body []byte) ([]types.Patient, bool, error) {
	var pg types.Page
	if err := json.Unmarshal(body, &pg); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	data := bytes.TrimSpace(pg.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, false, fmt.Errorf("%w: data is missing or not an array", ErrMalformedPage)
	}
	if pg.Pagination == nil {
		return nil, false, fmt.Errorf("%w: pagination is missing", ErrMalformedPage)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: records: %v", ErrMalformedPage, err)
	}
	patients := make([]types.Patient, 0, len(raw))
	for i, rec := range raw {
		if bytes.Equal(bytes.TrimSpace(rec), []byte("null")) {
			slog.Warn("fetcher: skipping null record", "index", i)
			continue
		}
		var p types.Patient
		if err := json.Unmarshal(rec, &p); err != nil {
			slog.Warn("fetcher: skipping undecodable record", "index", i, "err", err)
			continue
		}
		patients = append(patients, p)
	}
	return patients, pg.Pagination.HasNext, nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
