package model

import (
	"encoding/json"
	"testing"
)

const sampleDoc = `{
  "$schema": "http://timetable-registry.amrita.town/v2/schema.json",
  "subjects": {
    "A": {"name": "Design and Analysis of Algorithms", "shortName": "DAA", "code": "23CSE214", "faculty": ["Dr. Anita Kumar"]},
    "B": {"name": "Operating Systems", "shortName": "OS", "code": "23CSE213", "faculty": ["Dr. Ravi Menon", "Ms. Divya S"]}
  },
  "config": {
    "batch": {"label": "Lab Batch", "values": [{"label": "Batch 1", "id": "b1"}, {"label": "Batch 2", "id": "b2"}]},
    "elective": {"label": "Elective", "values": [{"label": "Deep Learning", "id": "dl"}, {"label": "Computer Vision", "id": "cv"}]}
  },
  "slots": {
    "mondayLab": {"match": "batch", "choices": {"b1": "B_LAB", "b2": "FREE"}},
    "electiveHour": {"match": ["batch", "elective"], "choices": [
      {"pattern": ["b1", "dl"], "value": "A"},
      {"pattern": ["*", "*"], "value": "FREE"}
    ]}
  },
  "schedule": {
    "Monday": ["mondayLab", "mondayLab", "mondayLab", "A", "B", "FREE", "electiveHour"]
  }
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Subjects) != 2 || len(doc.Config) != 2 || len(doc.Slots) != 2 {
		t.Fatalf("unexpected document shape: %+v", doc)
	}
	if doc.Subjects["A"].Code != "23CSE214" {
		t.Fatalf("subject A code = %q", doc.Subjects["A"].Code)
	}
	if got := doc.Schedule["Monday"]; len(got) != 7 {
		t.Fatalf("Monday has %d cells", len(got))
	}

	simple := doc.Slots["mondayLab"]
	if simple.Kind != SlotSimple || simple.Match != "batch" || simple.Choices["b1"] != "B_LAB" {
		t.Fatalf("simple slot decoded wrong: %+v", simple)
	}

	complexSlot := doc.Slots["electiveHour"]
	if complexSlot.Kind != SlotComplex || len(complexSlot.MatchKeys) != 2 {
		t.Fatalf("complex slot decoded wrong: %+v", complexSlot)
	}
	if complexSlot.ComplexChoices[0].Value != "A" || complexSlot.ComplexChoices[1].Pattern[0] != Wildcard {
		t.Fatalf("complex choices decoded wrong: %+v", complexSlot.ComplexChoices)
	}
}

func TestParseDocumentEmpty(t *testing.T) {
	if _, err := ParseDocument(nil); err == nil {
		t.Fatalf("expect error for empty body")
	}
}

func TestSlotBadMatchShape(t *testing.T) {
	var s Slot
	if err := json.Unmarshal([]byte(`{"match": 7, "choices": {}}`), &s); err == nil {
		t.Fatalf("expect error for numeric match")
	}
	if err := json.Unmarshal([]byte(`{"choices": {}}`), &s); err == nil {
		t.Fatalf("expect error for missing match")
	}
}

func TestSlotMarshalRoundTrip(t *testing.T) {
	for _, raw := range []string{
		`{"match":"batch","choices":{"b1":"A"}}`,
		`{"match":["batch"],"choices":[{"pattern":["*"],"value":"FREE"}]}`,
	} {
		var s Slot
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		out, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var again Slot
		if err := json.Unmarshal(out, &again); err != nil {
			t.Fatalf("re-unmarshal %s: %v", out, err)
		}
		if again.Kind != s.Kind {
			t.Fatalf("kind changed across round trip: %v != %v", again.Kind, s.Kind)
		}
	}
}

func TestIsSubjectRef(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cases := []struct {
		ref  string
		want bool
	}{
		{"A", true},
		{"B_LAB", true},
		{"B", true},
		{"C", false},
		{"C_LAB", false},
		{"_LAB", false},
		{"FREE", false},
	}
	for _, c := range cases {
		if got := doc.IsSubjectRef(c.ref); got != c.want {
			t.Fatalf("IsSubjectRef(%q) = %v, want %v", c.ref, got, c.want)
		}
	}
}

func TestCodePattern(t *testing.T) {
	for code, want := range map[string]bool{
		"23CSE214": true,
		"23LSE201": true,
		"23AI101":  true,
		"CSE214":   false,
		"23cse214": false,
		"23CSEE21": false,
	} {
		if got := CodePattern.MatchString(code); got != want {
			t.Fatalf("CodePattern(%q) = %v, want %v", code, got, want)
		}
	}
}
