package compute

import (
	"strconv"
	"strings"

	"github.com/patientrisk/patientrisk/pkg/types"
)

// Blood pressure stages returned by BloodPressureScore.
const (
	BPInvalid  = 0
	BPNormal   = 1
	BPElevated = 2
	BPStage1   = 3
	BPStage2   = 4
)

// Temperature thresholds in °F.
const (
	TempNormalMax = 99.5
	TempLowFever  = 99.6
	TempLowMax    = 100.9
	TempHighFever = 101.0
)

// AgeSenior is the last age scored as 1; anything older scores 2.
const AgeSenior = 65

// BloodPressureScore scores a "systolic/diastolic" reading.
//
// Rules are evaluated in order and the first match wins, so a reading such as
// 150/85 is stage 1 (diastolic 80–89) rather than stage 2:
//
//	systolic < 120 and diastolic < 80       → 1
//	systolic 120–129 and diastolic < 80     → 2
//	systolic 130–139 or diastolic 80–89     → 3
//	systolic ≥ 140 or diastolic ≥ 90        → 4
//
// Anything that is not a string of two integers separated by "/" scores 0.
func BloodPressureScore(v any) int {
	sys, dia, ok := parseBloodPressure(v)
	if !ok {
		return BPInvalid
	}
	switch {
	case sys < 120 && dia < 80:
		return BPNormal
	case sys >= 120 && sys <= 129 && dia < 80:
		return BPElevated
	case (sys >= 130 && sys <= 139) || (dia >= 80 && dia <= 89):
		return BPStage1
	case sys >= 140 || dia >= 90:
		return BPStage2
	default:
		return BPInvalid
	}
}

// TemperatureScore scores a body temperature in °F. Non-numbers score 0, as do
// readings that fall between the published bands (e.g. 99.55).
func TemperatureScore(v any) int {
	t, ok := types.Number(v)
	if !ok {
		return 0
	}
	switch {
	case t <= TempNormalMax:
		return 0
	case t >= TempLowFever && t <= TempLowMax:
		return 1
	case t >= TempHighFever:
		return 2
	default:
		return 0
	}
}

// AgeScore scores age in years: 1 up to and including 65, 2 above.
// Non-numbers score 0.
func AgeScore(v any) int {
	age, ok := types.Number(v)
	if !ok {
		return 0
	}
	if age > AgeSenior {
		return 2
	}
	return 1
}

// parseBloodPressure splits "sys/dia" into two integers.
func parseBloodPressure(v any) (sys, dia int, ok bool) {
	s, isString := v.(string)
	if !isString {
		return 0, 0, false
	}
	left, right, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	sys, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, false
	}
	dia, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, false
	}
	return sys, dia, true
}
