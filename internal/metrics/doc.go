// Package metrics renders a finished assessment run as Prometheus text
// exposition, for the node_exporter textfile collector or any scraper that
// reads .prom files.
//
// Families(Report) builds the metric families; Write encodes them with
// expfmt; WriteFile replaces the target file atomically (temp file + rename)
// so a collector never reads a half-written report.
//
// Exported series (all gauges unless noted):
//
//	patientrisk_run_info{run_id,rule}            1
//	patientrisk_run_timestamp_seconds            run start, unix seconds
//	patientrisk_run_duration_seconds             wall time of the run
//	patientrisk_run_success                      1 when every stage completed
//	patientrisk_fetch_pages                      pages fetched
//	patientrisk_fetch_records                    patient records fetched
//	patientrisk_fetch_rate_limited_total         429 responses (counter)
//	patientrisk_fetch_transient_errors_total     other failed attempts (counter)
//	patientrisk_fetch_aborted{reason}            1 when the fetch stopped early
//	patientrisk_patients_classified{category}    list sizes: high_risk|fever|data_quality
//	patientrisk_submit_status_code               HTTP status of the submission, 0 if skipped
package metrics
