// Package notify posts a short run summary to the webhooks listed under
// notify.webhooks once an assessment run has finished.
//
// Supported webhook types:
//   - slack: {"text": "..."}
//   - teams: legacy MessageCard
//   - http: {"summary": {...}} with the full Summary as JSON
//
// Webhook URLs are resolved from environment variables. Delivery errors are
// logged and never fail the run.
package notify
