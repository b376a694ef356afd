package mockapi

import "github.com/patientrisk/patientrisk/pkg/types"

// SamplePatients returns a fixed data set mixing clean records with the kinds
// of noise the real service produces: missing fields, text in numeric fields,
// half-filled blood pressure and implausible values.
func SamplePatients() []types.Patient {
	return []types.Patient{
		{ID: "DEMO001", Name: "TestPatient, John", Age: 45.0, Gender: "M", BloodPressure: "120/80", Temperature: 98.6},
		{ID: "DEMO002", Name: "AlphaTest, Jane", Age: 67.0, Gender: "F", BloodPressure: "150/95", Temperature: 101.2},
		{ID: "DEMO003", Name: "Sample, Max", Age: 32.0, Gender: "M", BloodPressure: "118/76", Temperature: 99.7},
		{ID: "DEMO004", Name: "Noise, Nora", Age: "fifty-three", Gender: "F", BloodPressure: "135/85", Temperature: 100.2},
		{ID: "DEMO005", Name: "Partial, Pat", Age: 71.0, Gender: "M", BloodPressure: "150/", Temperature: 98.2},
		{ID: "DEMO006", Name: "Missing, Mo", Age: 29.0, Gender: "F", BloodPressure: nil, Temperature: 98.9},
		{ID: "DEMO007", Name: "Stage, Sam", Age: 58.0, Gender: "M", BloodPressure: "142/88", Temperature: 99.1},
		{ID: "DEMO008", Name: "Fever, Fay", Age: 41.0, Gender: "F", BloodPressure: "125/78", Temperature: 102.4},
		{ID: "DEMO009", Name: "Error, Ed", Age: 66.0, Gender: "M", BloodPressure: "INVALID", Temperature: "TEMP_ERROR"},
		{ID: "DEMO010", Name: "Elder, Eva", Age: 88.0, Gender: "F", BloodPressure: "160/100", Temperature: 98.0},
		{ID: "DEMO011", Name: "Young, Yu", Age: 19.0, Gender: "M", BloodPressure: "110/70", Temperature: 97.9},
		{ID: "DEMO012", Name: "Odd, Otto", Age: 150.0, Gender: "M", BloodPressure: "200/130", Temperature: 98.6},
		{ID: "DEMO013", Name: "Hot, Hal", Age: 35.0, Gender: "M", BloodPressure: "138/82", Temperature: 99.6},
		{ID: "DEMO014", Name: "Cold, Cy", Age: 50.0, Gender: "F", BloodPressure: "122/79", Temperature: 200.0},
		{ID: "DEMO015", Name: "Blank, Bo", Age: nil, Gender: "", BloodPressure: "", Temperature: nil},
		{ID: "DEMO016", Name: "Border, Bea", Age: 65.0, Gender: "F", BloodPressure: "130/79", Temperature: 100.9},
		{ID: "DEMO017", Name: "Text, Tim", Age: "48", Gender: "M", BloodPressure: "128/76", Temperature: "99.8"},
		{ID: "DEMO018", Name: "Slash, Sid", Age: 60.0, Gender: "M", BloodPressure: "/90", Temperature: 98.4},
		{ID: "DEMO019", Name: "Calm, Cal", Age: 44.0, Gender: "F", BloodPressure: "112/72", Temperature: 98.3},
		{ID: "DEMO020", Name: "Peak, Pia", Age: 72.0, Gender: "F", BloodPressure: "145/92", Temperature: 103.0},
		{ID: "DEMO021", Name: "Low, Lou", Age: -4.0, Gender: "M", BloodPressure: "119/79", Temperature: 89.0},
		{ID: "DEMO022", Name: "Mid, Mia", Age: 40.0, Gender: "F", BloodPressure: "129/80", Temperature: 99.5},
		{ID: "DEMO023", Name: "Last, Lee", Age: 55.0, Gender: "M", BloodPressure: "121/85", Temperature: 101.0},
	}
}
