package types

import (
	"encoding/json"
	"testing"
)

func TestPatientID_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want PatientID
	}{
		{`"DEMO001"`, "DEMO001"},
		{`42`, "42"},
		{`1e3`, "1e3"},
		{`null`, ""},
		{`""`, ""},
	}
	for _, c := range cases {
		var got PatientID
		if err := json.Unmarshal([]byte(c.in), &got); err != nil {
			t.Errorf("%s: unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPatientID_OtherValuesKeepTheirText(t *testing.T) {
	cases := []struct {
		in   string
		want PatientID
	}{
		{`{"id": 1}`, `{"id":1}`},
		{`true`, "true"},
		{`[1, 2]`, "[1,2]"},
	}
	for _, c := range cases {
		var got PatientID
		if err := json.Unmarshal([]byte(c.in), &got); err != nil {
			t.Errorf("%s: unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPatient_NoisyDescriptiveFields(t *testing.T) {
	raw := `{"patient_id":"B","name":123,"gender":null,"medications":["x"],"diagnosis":{"code":"I10"},
		"blood_pressure":"150/95","temperature":101.2,"age":70}`
	var p Patient
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "B" || p.Name != 123.0 || p.BloodPressure != "150/95" {
		t.Errorf("got %+v", p)
	}
}

func TestPatient_DecodesUntypedVitals(t *testing.T) {
	raw := `{"patient_id":"P1","age":"fifty","blood_pressure":null,"temperature":99.8}`
	var p Patient
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.ID != "P1" {
		t.Errorf("id: got %q", p.ID)
	}
	if _, ok := p.Age.(string); !ok {
		t.Errorf("age: got %T, want string", p.Age)
	}
	if p.BloodPressure != nil {
		t.Errorf("blood_pressure: got %v, want nil", p.BloodPressure)
	}
	if f, ok := Number(p.Temperature); !ok || f != 99.8 {
		t.Errorf("temperature: got %v %v", f, ok)
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{float64(98.6), 98.6, true},
		{json.Number("101"), 101, true},
		{json.Number("abc"), 0, false},
		{7, 7, true},
		{"98.6", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := Number(c.in)
		if got != c.want || ok != c.wantOK {
			t.Errorf("Number(%#v) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.wantOK)
		}
	}
}

func TestAssessment_EncodesEmptyListsAsArrays(t *testing.T) {
	b, err := json.Marshal(NewAssessment())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"high_risk_patients":[],"fever_patients":[],"data_quality_issues":[]}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}
