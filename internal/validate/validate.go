// Package validate cross-checks a timetable document's internal references
// and arity constraints before it reaches the schedule compiler. Structural
// shape checking (is this JSON the right shape at all) happens upstream;
// this package owns the domain invariants.
package validate

import (
	"fmt"
	"sort"

	"ttcal/internal/model"
	"ttcal/internal/timetable"
)

// Document checks every semantic invariant and returns all violations as
// human-readable messages. An empty slice means the document is valid.
// Checks are independent and never short-circuit, so document authors see
// the full list in one pass.
func Document(doc *model.Document) []string {
	var errs []string
	errs = append(errs, checkSubjects(doc)...)
	errs = append(errs, checkConfig(doc)...)
	errs = append(errs, checkSlots(doc)...)
	errs = append(errs, checkSchedule(doc)...)
	return errs
}

func checkSubjects(doc *model.Document) []string {
	var errs []string
	for _, key := range sortedKeys(doc.Subjects) {
		if model.IsLabRef(key) {
			errs = append(errs, fmt.Sprintf(
				"subject %q: key must not end with %s; the suffix is reserved for lab references",
				key, model.LabSuffix))
		}
		if code := doc.Subjects[key].Code; code != "" && !model.CodePattern.MatchString(code) {
			errs = append(errs, fmt.Sprintf("subject %q: code %q does not match the institutional pattern", key, code))
		}
	}
	return errs
}

func checkConfig(doc *model.Document) []string {
	var errs []string
	for _, key := range sortedKeys(doc.Config) {
		seen := make(map[string]bool)
		for _, v := range doc.Config[key].Values {
			if seen[v.ID] {
				errs = append(errs, fmt.Sprintf("config option %q: duplicate value id %q", key, v.ID))
			}
			seen[v.ID] = true
		}
	}
	return errs
}

func checkSlots(doc *model.Document) []string {
	var errs []string
	for _, name := range sortedKeys(doc.Slots) {
		slot := doc.Slots[name]
		switch slot.Kind {
		case model.SlotSimple:
			errs = append(errs, checkSimpleSlot(doc, name, slot)...)
		case model.SlotComplex:
			errs = append(errs, checkComplexSlot(doc, name, slot)...)
		}
	}
	return errs
}

func checkSimpleSlot(doc *model.Document, name string, slot model.Slot) []string {
	var errs []string
	opt, ok := doc.Config[slot.Match]
	if !ok {
		errs = append(errs, fmt.Sprintf("slot %q: match key %q is not a declared config option", name, slot.Match))
	}
	for _, id := range sortedKeys(slot.Choices) {
		if ok && !opt.HasValueID(id) {
			errs = append(errs, fmt.Sprintf("slot %q: choice key %q is not a value id of config option %q", name, id, slot.Match))
		}
		if ref := slot.Choices[id]; ref != model.FreeCell && !doc.IsSubjectRef(ref) {
			errs = append(errs, fmt.Sprintf("slot %q: choice %q resolves to unknown subject %q", name, id, ref))
		}
	}
	return errs
}

func checkComplexSlot(doc *model.Document, name string, slot model.Slot) []string {
	var errs []string
	for _, key := range slot.MatchKeys {
		if _, ok := doc.Config[key]; !ok {
			errs = append(errs, fmt.Sprintf("slot %q: match key %q is not a declared config option", name, key))
		}
	}
	for ci, choice := range slot.ComplexChoices {
		if len(choice.Pattern) != len(slot.MatchKeys) {
			errs = append(errs, fmt.Sprintf(
				"slot %q: choice %d has %d pattern elements, want %d",
				name, ci, len(choice.Pattern), len(slot.MatchKeys)))
		} else {
			for pi, elem := range choice.Pattern {
				if elem == model.Wildcard {
					continue
				}
				key := slot.MatchKeys[pi]
				if opt, ok := doc.Config[key]; ok && !opt.HasValueID(elem) {
					errs = append(errs, fmt.Sprintf(
						"slot %q: choice %d pattern element %q is not a value id of config option %q",
						name, ci, elem, key))
				}
			}
		}
		if choice.Value != model.FreeCell && !doc.IsSubjectRef(choice.Value) {
			errs = append(errs, fmt.Sprintf("slot %q: choice %d resolves to unknown subject %q", name, ci, choice.Value))
		}
	}
	return errs
}

func checkSchedule(doc *model.Document) []string {
	var errs []string
	for _, day := range sortedKeys(doc.Schedule) {
		cells := doc.Schedule[day]
		if !knownWeekday(day) {
			errs = append(errs, fmt.Sprintf("schedule: unknown weekday %q", day))
		}
		if len(cells) != timetable.PeriodsPerDay {
			errs = append(errs, fmt.Sprintf("schedule %s: has %d cells, want %d", day, len(cells), timetable.PeriodsPerDay))
		}
		for i, cell := range cells {
			if cell == model.FreeCell {
				continue
			}
			if _, ok := doc.Slots[cell]; ok {
				continue
			}
			if !doc.IsSubjectRef(cell) {
				errs = append(errs, fmt.Sprintf("schedule %s: cell %d references unknown slot or subject %q", day, i, cell))
			}
		}
		errs = append(errs, checkLabRuns(doc, day, cells)...)
	}
	return errs
}

// checkLabRuns verifies that literal lab references tile the day: a lab cell
// must start at a lab position (0, 3, 5) and repeat across its whole run, so
// the widened wall-clock ranges add up to a coherent school day. Cells that
// name slots are exempt since their value depends on the configuration.
func checkLabRuns(doc *model.Document, day string, cells []string) []string {
	var errs []string
	for i := 0; i < len(cells) && i < timetable.PeriodsPerDay; {
		cell := cells[i]
		if _, isSlot := doc.Slots[cell]; isSlot || !model.IsLabRef(cell) {
			i++
			continue
		}
		width, ok := timetable.LabSpan(i)
		if !ok {
			errs = append(errs, fmt.Sprintf("schedule %s: lab reference %q cannot start at position %d", day, cell, i))
			i++
			continue
		}
		run := true
		for j := i + 1; j < i+width; j++ {
			if j >= len(cells) || cells[j] != cell {
				run = false
				break
			}
		}
		if !run {
			errs = append(errs, fmt.Sprintf(
				"schedule %s: lab reference %q at position %d does not span its full %d-period block",
				day, cell, i, width))
			i++
			continue
		}
		i += width
	}
	return errs
}

func knownWeekday(day string) bool {
	for _, wd := range timetable.Weekdays {
		if wd == day {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
