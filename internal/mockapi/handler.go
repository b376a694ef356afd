package mockapi

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/patientrisk/patientrisk/internal/compute"
	"github.com/patientrisk/patientrisk/pkg/types"
)

// Listing defaults of the real service.
const (
	DefaultLimit = 5
	MaxLimit     = 20
)

// Faults injects failures into listing responses. Each field is a period N:
// every Nth listing request (counted from 1) gets that failure. Zero disables
// it. When several periods match, rate limiting wins, then errors.
type Faults struct {
	RateLimitEvery int
	ErrorEvery     int
	MalformedEvery int

	// RetryAfter is sent with injected 429s when positive, in seconds.
	RetryAfter int
}

// Options configures a Server.
type Options struct {
	// APIKey is the expected key; empty disables authentication.
	APIKey string

	// Header carries the key; defaults to x-api-key.
	Header string

	// Patients is the data set served; defaults to SamplePatients().
	Patients []types.Patient

	Faults Faults
}

// Server is the mock assessment service.
type Server struct {
	opts     Options
	mux      *http.ServeMux
	expected types.Assessment

	mu          sync.Mutex
	listings    int
	submissions []types.Assessment
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Header == "" {
		opts.Header = "x-api-key"
	}
	if opts.Patients == nil {
		opts.Patients = SamplePatients()
	}
	s := &Server{
		opts:     opts,
		mux:      http.NewServeMux(),
		expected: compute.Classify(opts.Patients, compute.RuleConditional),
	}

	s.mux.HandleFunc("/api/patients", s.requireKey(s.patients))
	s.mux.HandleFunc("/api/submit-assessment", s.requireKey(s.submit))

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListingRequests returns how many listing requests passed authentication.
func (s *Server) ListingRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings
}

// Submissions returns every accepted submission, oldest first.
func (s *Server) Submissions() []types.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Assessment, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Expected returns the classification the grader compares against.
func (s *Server) Expected() types.Assessment {
	return s.expected
}

// requireKey rejects requests without the configured API key.
func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" && r.Header.Get(s.opts.Header) != s.opts.APIKey {
			jsonErr(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next(w, r)
	}
}

// patients serves GET /api/patients.
func (s *Server) patients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	s.listings++
	n := s.listings
	s.mu.Unlock()

	f := s.opts.Faults
	switch {
	case every(f.RateLimitEvery, n):
		if f.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(f.RetryAfter))
		}
		jsonErr(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	case every(f.ErrorEvery, n):
		jsonErr(w, http.StatusInternalServerError, "internal server error")
		return
	case every(f.MalformedEvery, n):
		jsonResp(w, http.StatusOK, map[string]any{"message": "temporarily degraded"})
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", DefaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	total := len(s.opts.Patients)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	jsonResp(w, http.StatusOK, map[string]any{
		"data": s.opts.Patients[start:end],
		"pagination": types.Pagination{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// submit serves POST /api/submit-assessment.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&raw); err != nil {
		jsonErr(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	var a types.Assessment
	fields := map[string]*[]types.PatientID{
		"high_risk_patients":  &a.HighRiskPatients,
		"fever_patients":      &a.FeverPatients,
		"data_quality_issues": &a.DataQualityIssues,
	}
	for name, dst := range fields {
		v, ok := raw[name]
		if !ok {
			jsonErr(w, http.StatusBadRequest, "missing field "+name)
			return
		}
		if err := json.Unmarshal(v, dst); err != nil || *dst == nil {
			jsonErr(w, http.StatusBadRequest, name+" must be an array of patient ids")
			return
		}
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, a)
	attempt := len(s.submissions)
	s.mu.Unlock()

	res := grade(s.expected, a)
	slog.Info("mockapi: submission graded", "attempt", attempt, "score", res.Score, "status", res.Status)

	jsonResp(w, http.StatusOK, SubmitResponse{
		Success: true,
		Message: "Assessment submitted successfully",
		Results: res,
		Attempt: attempt,
	})
}

func every(period, n int) bool {
	return period > 0 && n%period == 0
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func jsonResp(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, status int, msg string) {
	jsonResp(w, status, map[string]string{"error": msg})
}
