package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patientrisk/patientrisk/internal/config"
	"github.com/patientrisk/patientrisk/internal/mockapi"
	"github.com/patientrisk/patientrisk/pkg/types"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the key")
	keyEnv := flag.String("key-env", config.DefaultKeyEnv, "environment variable holding the expected API key (empty disables auth)")
	dataPath := flag.String("data", "", "JSON array of patients to serve (built-in sample when empty)")
	rateLimitEvery := flag.Int("rate-limit-every", 0, "answer every Nth listing request with 429")
	errorEvery := flag.Int("error-every", 0, "answer every Nth listing request with 500")
	malformedEvery := flag.Int("malformed-every", 0, "answer every Nth listing request with a body missing data")
	retryAfter := flag.Int("retry-after", 0, "Retry-After seconds sent with injected 429s")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(*envFile); err != nil {
		slog.Error("failed to load env file", "err", err)
		os.Exit(1)
	}

	opts := mockapi.Options{
		Faults: mockapi.Faults{
			RateLimitEvery: *rateLimitEvery,
			ErrorEvery:     *errorEvery,
			MalformedEvery: *malformedEvery,
			RetryAfter:     *retryAfter,
		},
	}
	if *keyEnv != "" {
		opts.APIKey = os.Getenv(*keyEnv)
	}
	if opts.APIKey == "" {
		slog.Warn("no API key configured, authentication disabled")
	}
	if *dataPath != "" {
		patients, err := loadPatients(*dataPath)
		if err != nil {
			slog.Error("failed to load patients", "path", *dataPath, "err", err)
			os.Exit(1)
		}
		opts.Patients = patients
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := mockapi.New(opts)
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("mock API listening", "addr", *addr, "base_url", "http://localhost"+*addr+"/api")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("mock API shutting down", "listing_requests", srv.ListingRequests(), "submissions", len(srv.Submissions()))
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}

func loadPatients(path string) ([]types.Patient, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var patients []types.Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}
