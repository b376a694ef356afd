package compute

import (
	"fmt"
	"regexp"

	"github.com/patientrisk/patientrisk/pkg/types"
)

// Rule selects how high-risk membership is decided.
type Rule string

const (
	// RuleConditional flags bp ≥ 4, or bp ≥ 3 together with temp ≥ 1.
	RuleConditional Rule = "conditional"

	// RuleCumulative flags bp + temp + age ≥ 4.
	RuleCumulative Rule = "cumulative"
)

// ParseRule maps a configuration value to a Rule. Empty selects the default.
func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case "":
		return RuleConditional, nil
	case RuleConditional, RuleCumulative:
		return Rule(s), nil
	default:
		return "", fmt.Errorf("compute: unknown high-risk rule %q", s)
	}
}

// Data-quality issue reasons reported in Evaluation.Issues.
const (
	IssueBloodPressure = "blood_pressure"
	IssueAge           = "age"
	IssueTemperature   = "temperature"
)

// Plausible ranges outside of which a vital is treated as a data error.
const (
	AgeMin  = 0.0
	AgeMax  = 120.0
	TempMin = 90.0
	TempMax = 110.0
)

// cumulativeThreshold is the total score at which RuleCumulative flags a patient.
const cumulativeThreshold = 4

var bpPattern = regexp.MustCompile(`^\d{2,3}/\d{2,3}$`)

// Evaluation is the scored view of one patient.
type Evaluation struct {
	ID types.PatientID

	BloodPressure int
	Temperature   int
	Age           int
	Total         int

	Fever    bool
	HighRisk bool

	// Issues lists the vitals that are missing, malformed or implausible.
	Issues []string
}

// DataQualityIssue reports whether any vital failed validation.
func (e Evaluation) DataQualityIssue() bool { return len(e.Issues) > 0 }

// Evaluate scores p and decides its memberships under rule.
func Evaluate(p types.Patient, rule Rule) Evaluation {
	ev := Evaluation{
		ID:            p.ID,
		BloodPressure: BloodPressureScore(p.BloodPressure),
		Temperature:   TemperatureScore(p.Temperature),
		Age:           AgeScore(p.Age),
	}
	ev.Total = ev.BloodPressure + ev.Temperature + ev.Age

	if t, ok := types.Number(p.Temperature); ok && t >= TempLowFever {
		ev.Fever = true
	}

	switch rule {
	case RuleCumulative:
		ev.HighRisk = ev.Total >= cumulativeThreshold
	default:
		ev.HighRisk = ev.BloodPressure >= BPStage2 ||
			(ev.BloodPressure >= BPStage1 && ev.Temperature >= 1)
	}

	ev.Issues = dataQualityIssues(p)
	return ev
}

// Classify evaluates every patient in order and builds the submission lists.
// Data-quality identifiers are deduplicated, keeping first-seen order.
func Classify(patients []types.Patient, rule Rule) types.Assessment {
	out := types.NewAssessment()
	seen := make(map[types.PatientID]struct{})

	for _, p := range patients {
		ev := Evaluate(p, rule)
		if ev.HighRisk {
			out.HighRiskPatients = append(out.HighRiskPatients, ev.ID)
		}
		if ev.Fever {
			out.FeverPatients = append(out.FeverPatients, ev.ID)
		}
		if ev.DataQualityIssue() {
			if _, dup := seen[ev.ID]; !dup {
				seen[ev.ID] = struct{}{}
				out.DataQualityIssues = append(out.DataQualityIssues, ev.ID)
			}
		}
	}
	return out
}

// dataQualityIssues returns the vitals of p that fail validation.
func dataQualityIssues(p types.Patient) []string {
	var issues []string

	bp, ok := p.BloodPressure.(string)
	if !ok || !bpPattern.MatchString(bp) {
		issues = append(issues, IssueBloodPressure)
	}
	if age, ok := types.Number(p.Age); !ok || age < AgeMin || age > AgeMax {
		issues = append(issues, IssueAge)
	}
	if t, ok := types.Number(p.Temperature); !ok || t < TempMin || t > TempMax {
		issues = append(issues, IssueTemperature)
	}
	return issues
}
