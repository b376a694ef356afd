package mockapi

import "github.com/patientrisk/patientrisk/pkg/types"

// PassScore is the minimum score reported as PASS.
const PassScore = 90.0

// SubmitResponse is the body returned by POST /api/submit-assessment.
type SubmitResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Results Results `json:"results"`
	Attempt int     `json:"attempt_number"`
}

// Results grades one submission.
type Results struct {
	Score     float64             `json:"score"`
	Status    string              `json:"status"`
	Breakdown map[string]Category `json:"breakdown"`
}

// Category compares one submitted list with the expected one.
type Category struct {
	Expected  int `json:"expected"`
	Submitted int `json:"submitted"`
	Correct   int `json:"correct"`
	Missed    int `json:"missed"`
	Extra     int `json:"extra"`
}

// grade scores got against want. Each category scores correct / (expected +
// extra), and the overall score is the mean of the three, as a percentage.
func grade(want, got types.Assessment) Results {
	res := Results{Breakdown: map[string]Category{
		"high_risk":    compare(want.HighRiskPatients, got.HighRiskPatients),
		"fever":        compare(want.FeverPatients, got.FeverPatients),
		"data_quality": compare(want.DataQualityIssues, got.DataQualityIssues),
	}}

	var sum float64
	for _, c := range res.Breakdown {
		denom := c.Expected + c.Extra
		if denom == 0 {
			sum += 1
			continue
		}
		sum += float64(c.Correct) / float64(denom)
	}
	res.Score = sum / float64(len(res.Breakdown)) * 100

	res.Status = "FAIL"
	if res.Score >= PassScore {
		res.Status = "PASS"
	}
	return res
}

func compare(want, got []types.PatientID) Category {
	wantSet := toSet(want)
	gotSet := toSet(got)

	c := Category{Expected: len(wantSet), Submitted: len(gotSet)}
	for id := range gotSet {
		if _, ok := wantSet[id]; ok {
			c.Correct++
		} else {
			c.Extra++
		}
	}
	c.Missed = c.Expected - c.Correct
	return c
}

func toSet(ids []types.PatientID) map[types.PatientID]struct{} {
	set := make(map[types.PatientID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
