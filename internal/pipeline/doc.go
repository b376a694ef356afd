// Package pipeline runs one assessment: fetch every patient, classify them,
// submit the result, then write the optional local artefacts (results JSON,
// Prometheus report) and webhook notifications.
//
// Stages run strictly one after another on the caller's goroutine. A fetch
// that stops early still flows into classification and submission with the
// records it has. A submission failure is returned to the caller; artefacts
// and notifications are still produced for the failed run.
package pipeline
