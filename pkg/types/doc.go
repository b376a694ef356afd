// Package types defines the shared Go types used by the assessor, the mock
// service and the tests. These are the in-memory representations of the
// assessment service's JSON wire format:
//
//   - Patient: one record from GET /patients; vitals are kept as untyped JSON
//     values because the service returns missing, malformed and out-of-range data
//   - PatientID: identifier that accepts a JSON string or number
//   - Page, Pagination: the listing envelope
//   - Assessment: the body of POST /submit-assessment
package types
