// Package submitter posts the finished Assessment to
// POST {base}/submit-assessment as a single JSON document.
//
// Submit is attempted exactly once. A transport error, a non-2xx status or a
// response body that is not JSON is returned to the caller, which ends the
// run. The service's response is treated as opaque JSON and logged verbatim.
package submitter
