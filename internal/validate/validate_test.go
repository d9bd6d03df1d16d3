package validate

import (
	"strings"
	"testing"

	"ttcal/internal/model"
)

func validDoc() *model.Document {
	return &model.Document{
		Subjects: map[string]model.Subject{
			"A": {Name: "Algorithms", ShortName: "DAA", Code: "23CSE214", Faculty: []string{"Dr. Anita Kumar"}},
			"B": {Name: "Operating Systems", ShortName: "OS", Code: "23CSE213", Faculty: []string{"Dr. Ravi Menon"}},
		},
		Config: map[string]model.ConfigOption{
			"batch": {Label: "Lab Batch", Values: []model.ConfigValue{
				{Label: "Batch 1", ID: "b1"},
				{Label: "Batch 2", ID: "b2"},
			}},
		},
		Slots: map[string]model.Slot{
			"mondayLab": {Kind: model.SlotSimple, Match: "batch", Choices: map[string]string{
				"b1": "B_LAB",
				"b2": "FREE",
			}},
		},
		Schedule: map[string][]string{
			"Monday": {"mondayLab", "mondayLab", "mondayLab", "A", "B", "FREE", "A"},
		},
	}
}

func TestValidDocumentHasNoErrors(t *testing.T) {
	if errs := Document(validDoc()); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestReservedSuffixSubjectKey(t *testing.T) {
	doc := validDoc()
	doc.Subjects["ML_LAB"] = model.Subject{Name: "ML Lab", Code: "23CSE281"}
	errs := Document(doc)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly 1: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0], "ML_LAB") || !strings.Contains(errs[0], "_LAB") {
		t.Fatalf("error does not identify the suffix violation: %q", errs[0])
	}
}

func TestBadSubjectCode(t *testing.T) {
	doc := validDoc()
	s := doc.Subjects["A"]
	s.Code = "CSE214"
	doc.Subjects["A"] = s
	errs := Document(doc)
	if len(errs) != 1 || !strings.Contains(errs[0], "institutional pattern") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestDuplicateConfigValueIDs(t *testing.T) {
	doc := validDoc()
	opt := doc.Config["batch"]
	opt.Values = append(opt.Values, model.ConfigValue{Label: "Batch 1 again", ID: "b1"})
	doc.Config["batch"] = opt
	errs := Document(doc)
	if len(errs) != 1 || !strings.Contains(errs[0], "duplicate value id") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestSimpleSlotViolations(t *testing.T) {
	doc := validDoc()
	doc.Slots["broken"] = model.Slot{
		Kind:  model.SlotSimple,
		Match: "campus", // undeclared option
		Choices: map[string]string{
			"b1": "GHOST", // unknown subject
		},
	}
	errs := Document(doc)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
}

func TestSimpleSlotChoiceKeyNotDeclared(t *testing.T) {
	doc := validDoc()
	doc.Slots["mondayLab"] = model.Slot{
		Kind:  model.SlotSimple,
		Match: "batch",
		Choices: map[string]string{
			"b9": "A", // not a declared value id of batch
		},
	}
	errs := Document(doc)
	if len(errs) != 1 || !strings.Contains(errs[0], `"b9"`) {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestComplexSlotViolations(t *testing.T) {
	doc := validDoc()
	doc.Slots["elect"] = model.Slot{
		Kind:      model.SlotComplex,
		MatchKeys: []string{"batch", "stream"}, // stream undeclared
		ComplexChoices: []model.ComplexChoice{
			{Pattern: []string{"b1"}, Value: "A"},            // arity mismatch
			{Pattern: []string{"b9", "*"}, Value: "A"},       // b9 not declared
			{Pattern: []string{"*", "*"}, Value: "GHOST_LAB"}, // unknown subject
		},
	}
	errs := Document(doc)
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), errs)
	}
}

func TestScheduleCellChecks(t *testing.T) {
	doc := validDoc()
	doc.Schedule["Funday"] = []string{"A", "GHOST", "FREE"}
	errs := Document(doc)
	// Unknown weekday, wrong cell count, unknown reference.
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
}

func TestLabRunTiling(t *testing.T) {
	doc := validDoc()
	// A literal lab reference that does not span its block.
	doc.Schedule["Tuesday"] = []string{"B_LAB", "FREE", "FREE", "A", "A", "FREE", "FREE"}
	errs := Document(doc)
	if len(errs) != 1 || !strings.Contains(errs[0], "does not span") {
		t.Fatalf("unexpected errors: %v", errs)
	}

	doc = validDoc()
	// A lab reference starting where no lab can start.
	doc.Schedule["Tuesday"] = []string{"FREE", "B_LAB", "FREE", "A", "A", "FREE", "FREE"}
	errs = Document(doc)
	if len(errs) != 1 || !strings.Contains(errs[0], "cannot start at position 1") {
		t.Fatalf("unexpected errors: %v", errs)
	}

	doc = validDoc()
	// Proper afternoon run: no errors.
	doc.Schedule["Tuesday"] = []string{"FREE", "FREE", "FREE", "B_LAB", "B_LAB", "FREE", "FREE"}
	if errs := Document(doc); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestErrorsAccumulate(t *testing.T) {
	doc := validDoc()
	doc.Subjects["X_LAB"] = model.Subject{Name: "X", Code: "23CSE999"}
	doc.Schedule["Funday"] = []string{"A"}
	errs := Document(doc)
	if len(errs) < 3 {
		t.Fatalf("expected all violations reported together, got %v", errs)
	}
}
