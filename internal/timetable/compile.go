package timetable

import "ttcal/internal/model"

// LabMarker prefixes the display name of a confirmed lab run entry.
const LabMarker = "[Lab] "

// Entry is one calendar-ready occupancy of a weekday: a subject with a
// concrete wall-clock range. A confirmed lab run collapses its 2-3 grid
// cells into a single Entry with the widened range.
type Entry struct {
	Name     string
	Code     string
	Faculty  []string
	Lab      bool
	Position int // first period position this entry occupies
	Start    ClockTime
	End      ClockTime
}

// ResolveDay maps a weekday's raw cells to subject references by resolving
// slot names against the configuration. Cells that name neither a slot nor a
// subject pass through unchanged (including FREE).
func ResolveDay(weekday string, doc *model.Document, conf Configuration) []string {
	cells := doc.Schedule[weekday]
	resolved := make([]string, len(cells))
	for i, cell := range cells {
		if slot, ok := doc.Slots[cell]; ok {
			resolved[i] = Resolve(slot, conf)
		} else {
			resolved[i] = cell
		}
	}
	return resolved
}

// CompileDay resolves a weekday's 7 cells and merges lab runs into single
// entries. The scan is an explicit cursor walk so the advance-by-{1,2,3}
// rule stays auditable:
//
//   - FREE advances by 1 and emits nothing.
//   - A lab-suffixed value is a confirmed run only when it starts at a lab
//     position (0, 3, 5) and the following cells of the run repeat the same
//     value; it emits one widened entry and advances by the run width.
//   - Any other value (including an unconfirmed lab reference) emits one
//     base-geometry entry and advances by 1.
//
// A resolved value whose base subject is missing from the document emits
// nothing; the period is dropped silently rather than failing the day.
func CompileDay(weekday string, doc *model.Document, conf Configuration) []Entry {
	resolved := ResolveDay(weekday, doc, conf)

	var entries []Entry
	for i := 0; i < len(resolved) && i < PeriodsPerDay; {
		ref := resolved[i]
		if ref == model.FreeCell {
			i++
			continue
		}

		lab := isLabRun(resolved, i)
		advance := 1
		rng := basePeriods[i]
		if lab {
			advance = labRunWidth[i]
			rng = labPeriods[i]
		}

		subj, ok := doc.Subjects[model.StripLab(ref)]
		if !ok {
			// Dangling reference: drop the period, keep the cursor rule.
			i += advance
			continue
		}

		name := subj.Name
		if lab {
			name = LabMarker + name
		}
		entries = append(entries, Entry{
			Name:     name,
			Code:     subj.Code,
			Faculty:  subj.Faculty,
			Lab:      lab,
			Position: i,
			Start:    rng.Start,
			End:      rng.End,
		})
		i += advance
	}
	return entries
}

// isLabRun reports whether the lab-suffixed value at position i spans a full
// run of identical cells. An isolated lab reference, or one starting off a
// lab position, is not a run and keeps base geometry.
func isLabRun(cells []string, i int) bool {
	ref := cells[i]
	if !model.IsLabRef(ref) {
		return false
	}
	width, ok := labRunWidth[i]
	if !ok {
		return false
	}
	for j := i + 1; j < i+width; j++ {
		if j >= len(cells) || cells[j] != ref {
			return false
		}
	}
	return true
}
