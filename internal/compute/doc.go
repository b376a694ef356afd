// Package compute derives risk scores and classifications from patient records.
//
// score.go provides three pure sub-score functions over untyped vitals:
// BloodPressureScore (0–4), TemperatureScore (0–2) and AgeScore (0–2).
// Unusable input always scores 0; it never panics or errors.
//
// classify.go applies the membership rules. Evaluate scores one patient and
// reports fever, high risk and data-quality flags; Classify folds a slice of
// patients into the three submission lists.
//
// High risk has two named rules. RuleConditional (the default) flags
// stage-4 blood pressure, or stage-3 blood pressure with any fever.
// RuleCumulative flags a sub-score total of 4 or more. They disagree on
// many patients and are never mixed.
package compute
