package types

import "encoding/json"

// Pagination is the pagination block of a listing page. Only HasNext drives
// the fetch loop; the rest is informational.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// Page is the raw envelope of GET /patients. Data and Pagination are kept
// raw so the fetcher can tell a missing field from an empty one.
type Page struct {
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

// Assessment is the classification result submitted to the service.
// A patient may appear in more than one list; DataQualityIssues holds each
// identifier at most once.
type Assessment struct {
	HighRiskPatients  []PatientID `json:"high_risk_patients"`
	FeverPatients     []PatientID `json:"fever_patients"`
	DataQualityIssues []PatientID `json:"data_quality_issues"`
}

// NewAssessment returns an Assessment whose lists encode as [] rather than null.
func NewAssessment() Assessment {
	return Assessment{
		HighRiskPatients:  []PatientID{},
		FeverPatients:     []PatientID{},
		DataQualityIssues: []PatientID{},
	}
}
