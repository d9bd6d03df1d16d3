package timetable

// PeriodsPerDay is the number of teaching periods in one school day. Every
// weekday row in a timetable document declares exactly this many cells.
const PeriodsPerDay = 7

// Weekdays is the fixed serialization order for schedule rows.
var Weekdays = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// ClockTime is a wall-clock time of day in the school's fixed zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// PeriodRange is a half-open [Start, End) wall-clock range.
type PeriodRange struct {
	Start ClockTime
	End   ClockTime
}

// basePeriods holds the wall-clock range of each ordinal period position.
var basePeriods = [PeriodsPerDay]PeriodRange{
	{ClockTime{8, 10}, ClockTime{9, 0}},
	{ClockTime{9, 0}, ClockTime{9, 50}},
	{ClockTime{9, 50}, ClockTime{10, 40}},
	{ClockTime{10, 55}, ClockTime{11, 45}},
	{ClockTime{11, 45}, ClockTime{12, 35}},
	{ClockTime{13, 15}, ClockTime{14, 5}},
	{ClockTime{14, 5}, ClockTime{14, 55}},
}

// labPeriods holds the widened range used when a confirmed lab run starts at
// the given position. Labs can only start at positions 0, 3 and 5.
var labPeriods = map[int]PeriodRange{
	0: {ClockTime{8, 10}, ClockTime{10, 25}},
	3: {ClockTime{10, 55}, ClockTime{12, 35}},
	5: {ClockTime{13, 15}, ClockTime{14, 55}},
}

// labRunWidth is the number of consecutive identical cells a lab run must
// span when it starts at the given position.
var labRunWidth = map[int]int{
	0: 3,
	3: 2,
	5: 2,
}

// LabSpan returns the cell count a lab run starting at pos must cover, and
// whether pos is a valid lab start position at all.
func LabSpan(pos int) (int, bool) {
	w, ok := labRunWidth[pos]
	return w, ok
}

// BasePeriod returns the base wall-clock range for a period position.
func BasePeriod(pos int) PeriodRange {
	return basePeriods[pos]
}
