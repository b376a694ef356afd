// Package mockapi is an in-process stand-in for the assessment service.
//
// Routes:
//   - GET  /api/patients?page=N&limit=M: paginated patient listing
//   - POST /api/submit-assessment      : accepts an Assessment and grades it
//
// Every route requires the configured API key header. Faults can inject
// periodic 429, 500 and malformed listing responses so the fetcher's retry
// behaviour can be exercised end to end, in tests via httptest and by hand
// via cmd/mockapi.
package mockapi
