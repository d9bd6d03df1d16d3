package ics

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "ttcal/internal/log"
	"ttcal/internal/model"
	"ttcal/internal/timetable"
)

const (
	prodID = "-//ttcal//Timetable Calendar//EN"

	// TZID is the single fixed-offset zone every event is expressed in.
	TZID = "Asia/Kolkata"

	// DefaultHorizonWeeks bounds the weekly recurrence when the caller does
	// not supply a horizon.
	DefaultHorizonWeeks = 12

	dateTimeLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"
)

// Location is the fixed +05:30 zone. No daylight-saving rules apply.
var Location = time.FixedZone(TZID, 5*3600+30*60)

// Options controls one serialization run.
type Options struct {
	// Title is the calendar display name.
	Title string
	// HorizonWeeks bounds the weekly recurrence; non-positive values fall
	// back to DefaultHorizonWeeks.
	HorizonWeeks int
	// Now anchors the recurring events; the zero value means time.Now().
	// Tests pin it for deterministic output.
	Now time.Time
}

// Serialize compiles every weekday of the document under the given
// configuration and renders the result as a folded, escaped iCalendar
// document with CRLF line endings. Each compiled entry becomes one weekly
// recurring event anchored at the next date on or after Now whose weekday
// matches. Weekdays with no entries are skipped.
func Serialize(doc *model.Document, conf timetable.Configuration, opts Options) ([]byte, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(Location)

	weeks := opts.HorizonWeeks
	if weeks <= 0 {
		weeks = DefaultHorizonWeeks
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:  rrule.WEEKLY,
		Until: now.AddDate(0, 0, 7*weeks).UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + EscapeText(opts.Title),
		"X-WR-TIMEZONE:" + TZID,
	}
	lines = append(lines, timezoneLines()...)

	dtstamp := now.UTC().Format(utcLayout)
	eventCount := 0
	for wd, weekday := range timetable.Weekdays {
		entries := timetable.CompileDay(weekday, doc, conf)
		if len(entries) == 0 {
			continue
		}
		anchor := nextWeekday(now, time.Weekday(wd))
		for _, e := range entries {
			lines = append(lines, eventLines(e, anchor, dtstamp, rule.String())...)
			eventCount++
		}
	}
	lines = append(lines, "END:VCALENDAR")

	appLog.Debug("calendar serialized", "events", eventCount, "horizon_weeks", weeks)

	var b bytes.Buffer
	for _, ln := range lines {
		b.WriteString(FoldLine(ln))
		b.WriteString("\r\n")
	}
	return b.Bytes(), nil
}

// timezoneLines is the single fixed-offset zone definition block.
func timezoneLines() []string {
	return []string{
		"BEGIN:VTIMEZONE",
		"TZID:" + TZID,
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZOFFSETFROM:+0530",
		"TZOFFSETTO:+0530",
		"TZNAME:IST",
		"END:STANDARD",
		"END:VTIMEZONE",
	}
}

func eventLines(e timetable.Entry, anchor time.Time, dtstamp, rule string) []string {
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), e.Start.Hour, e.Start.Minute, 0, 0, Location)
	end := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), e.End.Hour, e.End.Minute, 0, 0, Location)

	desc := e.Code
	if len(e.Faculty) > 0 {
		desc += "\n" + strings.Join(e.Faculty, ", ")
	}

	return []string{
		"BEGIN:VEVENT",
		"UID:" + eventUID(anchor.Weekday(), e),
		"DTSTAMP:" + dtstamp,
		"DTSTART;TZID=" + TZID + ":" + start.Format(dateTimeLayout),
		"DTEND;TZID=" + TZID + ":" + end.Format(dateTimeLayout),
		"RRULE:" + rule,
		"SUMMARY:" + EscapeText(e.Name),
		"DESCRIPTION:" + EscapeText(desc),
		"END:VEVENT",
	}
}

// eventUID derives a stable identifier from weekday, start time and subject
// code. Regenerating the calendar yields the same UIDs, so re-downloads
// update events in place instead of duplicating them.
func eventUID(wd time.Weekday, e timetable.Entry) string {
	return fmt.Sprintf("%s-%02d%02d-%s@ttcal",
		strings.ToLower(wd.String()[:3]), e.Start.Hour, e.Start.Minute, strings.ToLower(e.Code))
}

// nextWeekday returns the next date on or after now whose weekday matches,
// keeping now's date when it already does.
func nextWeekday(now time.Time, wd time.Weekday) time.Time {
	ahead := (int(wd) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, ahead)
}
