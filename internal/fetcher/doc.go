// Package fetcher pages through GET {base}/patients and accumulates every
// patient record.
//
// Pages are requested one at a time starting at page 1 until the service
// reports pagination.hasNext == false. Failures are retried on the same page:
//
//   - HTTP 429 waits on a truncated exponential backoff (2s→30s by default,
//     or the server's Retry-After when sent) and does not count as a failure.
//     Too many consecutive 429s end the fetch.
//   - Any other non-2xx status, transport error or malformed body is a
//     transient failure: wait RetryDelay and retry. After MaxRetries
//     consecutive failures the fetch stops.
//
// A stopped fetch is not an error: FetchAll returns the records gathered so
// far together with Stats describing why it stopped, so later stages can run
// on partial data. Only context cancellation is returned as an error.
package fetcher
