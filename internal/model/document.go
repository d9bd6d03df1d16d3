package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// FreeCell is the literal used in schedules and slot choices for an
	// unoccupied period.
	FreeCell = "FREE"

	// LabSuffix marks a schedule/slot reference as the lab session of a
	// subject. It is reserved for references; no subject key may end with it.
	LabSuffix = "_LAB"

	// Wildcard matches any configuration value in a complex slot pattern.
	Wildcard = "*"
)

// CodePattern is the institutional subject code format, e.g. "23CSE214".
var CodePattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{2,3}[0-9]{3}$`)

// Subject is one taught subject as declared in the document.
type Subject struct {
	Name      string   `json:"name"`
	ShortName string   `json:"shortName"`
	Code      string   `json:"code"`
	Faculty   []string `json:"faculty"`
}

// ConfigValue is one selectable value of a config option.
type ConfigValue struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// ConfigOption is a runtime choice the document exposes (e.g. batch or
// elective). The caller selects exactly one value id per option.
type ConfigOption struct {
	Label  string        `json:"label"`
	Values []ConfigValue `json:"values"`
}

// HasValueID reports whether id is one of the option's declared value ids.
func (o ConfigOption) HasValueID(id string) bool {
	for _, v := range o.Values {
		if v.ID == id {
			return true
		}
	}
	return false
}

// ValueIDs returns the option's declared value ids in document order.
func (o ConfigOption) ValueIDs() []string {
	ids := make([]string, 0, len(o.Values))
	for _, v := range o.Values {
		ids = append(ids, v.ID)
	}
	return ids
}

// Document is the timetable interchange document. It is immutable once
// decoded; all downstream stages treat it as read-only.
type Document struct {
	Schema   string                  `json:"$schema,omitempty"`
	Subjects map[string]Subject      `json:"subjects"`
	Config   map[string]ConfigOption `json:"config"`
	Slots    map[string]Slot         `json:"slots"`
	Schedule map[string][]string     `json:"schedule"`
}

// ParseDocument decodes a raw timetable document.
func ParseDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("empty document body")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode timetable document: %w", err)
	}
	return &doc, nil
}

// IsSubjectRef reports whether ref names a subject, either directly or via
// the lab suffix. "A_LAB" is a valid reference when subject "A" exists.
func (d *Document) IsSubjectRef(ref string) bool {
	if _, ok := d.Subjects[ref]; ok {
		return true
	}
	base, hadSuffix := strings.CutSuffix(ref, LabSuffix)
	if !hadSuffix {
		return false
	}
	_, ok := d.Subjects[base]
	return ok
}

// StripLab removes the lab suffix from a reference, if present.
func StripLab(ref string) string {
	return strings.TrimSuffix(ref, LabSuffix)
}

// IsLabRef reports whether ref carries the lab suffix.
func IsLabRef(ref string) bool {
	return strings.HasSuffix(ref, LabSuffix)
}
