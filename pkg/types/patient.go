package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// PatientID is a patient identifier. The service normally sends strings but
// numeric identifiers are accepted and rendered in decimal form.
type PatientID string

// UnmarshalJSON accepts any JSON value. Strings and numbers map to their
// text, null to the empty id, and other values to their compact JSON.
func (id *PatientID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = PatientID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = PatientID(n.String())
		return nil
	}
	// Anything else (bool, object, array) keeps its compact JSON text.
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return err
	}
	*id = PatientID(buf.String())
	return nil
}

// Patient is one record returned by the listing endpoint.
//
// Every field except ID holds whatever the service sent: a JSON number
// decodes to float64, a string to string, and a missing field or null to nil.
// Scoring functions decide what counts as usable.
type Patient struct {
	ID            PatientID `json:"patient_id"`
	Name          any       `json:"name,omitempty"`
	Age           any       `json:"age"`
	Gender        any       `json:"gender,omitempty"`
	BloodPressure any       `json:"blood_pressure"`
	Temperature   any       `json:"temperature"`
	VisitDate     any       `json:"visit_date,omitempty"`
	Diagnosis     any       `json:"diagnosis,omitempty"`
	Medications   any       `json:"medications,omitempty"`
}

// Number reports whether v is a JSON number and returns it as float64.
// Strings holding digits are not numbers.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
