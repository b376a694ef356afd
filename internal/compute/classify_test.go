package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patientrisk/patientrisk/pkg/types"
)

func patient(id string, bp, temp, age any) types.Patient {
	return types.Patient{ID: types.PatientID(id), BloodPressure: bp, Temperature: temp, Age: age}
}

func TestEvaluate_HighRiskConditional(t *testing.T) {
	tests := []struct {
		name string
		p    types.Patient
		want bool
	}{
		{"stage 2 without fever", patient("a", "150/95", 98.6, 30.0), true},
		{"stage 2 with invalid temperature", patient("b", "150/95", "n/a", 30.0), true},
		{"stage 1 without fever", patient("c", "135/85", 98.6, 80.0), false},
		{"stage 1 with low fever", patient("d", "135/85", 99.6, 30.0), true},
		{"stage 1 with high fever", patient("e", "135/85", 102.0, 30.0), true},
		{"elevated with high fever", patient("f", "125/78", 102.0, 80.0), false},
		{"invalid blood pressure", patient("g", "abc", 103.0, 90.0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := Evaluate(tc.p, RuleConditional)
			assert.Equal(t, tc.want, ev.HighRisk, "scores bp=%d temp=%d age=%d",
				ev.BloodPressure, ev.Temperature, ev.Age)
		})
	}
}

func TestEvaluate_HighRiskCumulative(t *testing.T) {
	// Elevated (2) + high fever (2) + senior (2) = 6: cumulative flags it,
	// conditional does not.
	p := patient("x", "125/78", 102.0, 80.0)
	assert.True(t, Evaluate(p, RuleCumulative).HighRisk)
	assert.False(t, Evaluate(p, RuleConditional).HighRisk)

	// Stage 2 (4) alone reaches the threshold under both rules.
	q := patient("y", "150/95", "bad", "bad")
	assert.True(t, Evaluate(q, RuleCumulative).HighRisk)
	assert.True(t, Evaluate(q, RuleConditional).HighRisk)

	// Normal (1) + no fever (0) + young (1) = 2.
	r := patient("z", "118/76", 98.0, 30.0)
	ev := Evaluate(r, RuleCumulative)
	assert.Equal(t, 2, ev.Total)
	assert.False(t, ev.HighRisk)
}

func TestEvaluate_Fever(t *testing.T) {
	assert.False(t, Evaluate(patient("a", "118/76", 99.5, 30.0), RuleConditional).Fever)
	assert.True(t, Evaluate(patient("b", "118/76", 99.6, 30.0), RuleConditional).Fever)
	assert.True(t, Evaluate(patient("c", "118/76", 100.95, 30.0), RuleConditional).Fever,
		"fever uses the raw temperature, not the score band")
	assert.False(t, Evaluate(patient("d", "118/76", "101", 30.0), RuleConditional).Fever)
	assert.False(t, Evaluate(patient("e", "118/76", nil, 30.0), RuleConditional).Fever)
}

func TestEvaluate_DataQuality(t *testing.T) {
	tests := []struct {
		name   string
		p      types.Patient
		issues []string
	}{
		{"clean", patient("a", "120/80", 98.6, 45.0), nil},
		{"implausible but well formed bp", patient("b", "200/130", 98.6, 45.0), nil},
		{"text bp", patient("c", "abc", 98.6, 45.0), []string{IssueBloodPressure}},
		{"missing bp", patient("d", nil, 98.6, 45.0), []string{IssueBloodPressure}},
		{"four digit systolic", patient("e", "1200/80", 98.6, 45.0), []string{IssueBloodPressure}},
		{"half bp", patient("f", "150/", 98.6, 45.0), []string{IssueBloodPressure}},
		{"age too high", patient("g", "120/80", 98.6, 150.0), []string{IssueAge}},
		{"negative age", patient("h", "120/80", 98.6, -1.0), []string{IssueAge}},
		{"age boundaries", patient("i", "120/80", 98.6, 120.0), nil},
		{"text age", patient("j", "120/80", 98.6, "fifty"), []string{IssueAge}},
		{"temperature too high", patient("k", "120/80", 200.0, 45.0), []string{IssueTemperature}},
		{"temperature too low", patient("l", "120/80", 89.9, 45.0), []string{IssueTemperature}},
		{"temperature boundaries", patient("m", "120/80", 110.0, 45.0), nil},
		{"everything wrong", patient("n", "x", "y", nil),
			[]string{IssueBloodPressure, IssueAge, IssueTemperature}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ev := Evaluate(tc.p, RuleConditional)
			assert.Equal(t, tc.issues, ev.Issues)
			assert.Equal(t, len(tc.issues) > 0, ev.DataQualityIssue())
		})
	}
}

func TestClassify(t *testing.T) {
	patients := []types.Patient{
		patient("DEMO001", "150/95", 98.6, 45.0),  // high risk
		patient("DEMO002", "135/85", 100.2, 30.0), // high risk + fever
		patient("DEMO003", "abc", 101.4, "old"),   // fever + quality
		patient("DEMO004", "118/76", 98.1, 30.0),  // nothing
		patient("DEMO005", nil, nil, nil),         // quality, three reasons
		patient("DEMO005", "120/80", 98.6, 150.0), // same id again, quality
	}

	got := Classify(patients, RuleConditional)

	assert.Equal(t, []types.PatientID{"DEMO001", "DEMO002"}, got.HighRiskPatients)
	assert.Equal(t, []types.PatientID{"DEMO002", "DEMO003"}, got.FeverPatients)
	assert.Equal(t, []types.PatientID{"DEMO003", "DEMO005"}, got.DataQualityIssues)
}

func TestClassify_EmptyListsAreNotNil(t *testing.T) {
	got := Classify(nil, RuleConditional)
	require.NotNil(t, got.HighRiskPatients)
	require.NotNil(t, got.FeverPatients)
	require.NotNil(t, got.DataQualityIssues)
}

func TestClassify_HighRiskMayRepeat(t *testing.T) {
	// Only data_quality_issues is deduplicated.
	patients := []types.Patient{
		patient("P1", "150/95", 101.0, 70.0),
		patient("P1", "150/95", 101.0, 70.0),
	}
	got := Classify(patients, RuleConditional)
	assert.Len(t, got.HighRiskPatients, 2)
	assert.Len(t, got.FeverPatients, 2)
	assert.Empty(t, got.DataQualityIssues)
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("")
	require.NoError(t, err)
	assert.Equal(t, RuleConditional, r)

	r, err = ParseRule("cumulative")
	require.NoError(t, err)
	assert.Equal(t, RuleCumulative, r)

	_, err = ParseRule("sum")
	assert.Error(t, err)
}
