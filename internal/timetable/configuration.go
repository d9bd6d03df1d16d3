package timetable

import (
	"fmt"
	"sort"
	"strings"

	"ttcal/internal/model"
)

// ConfigErrorKind classifies configuration pre-check failures.
type ConfigErrorKind int

const (
	// ConfigIncomplete means a declared option has no selected value.
	ConfigIncomplete ConfigErrorKind = iota
	// ConfigInvalid means the selected value id is not declared.
	ConfigInvalid
)

// ConfigError describes one problem with a caller-supplied configuration.
// ValidIDs always carries the option's declared ids so the caller can retry.
type ConfigError struct {
	Kind     ConfigErrorKind
	Key      string
	Value    string
	ValidIDs []string
}

func (e *ConfigError) Error() string {
	ids := strings.Join(e.ValidIDs, ", ")
	switch e.Kind {
	case ConfigIncomplete:
		return fmt.Sprintf("missing value for config option %q (valid: %s)", e.Key, ids)
	case ConfigInvalid:
		return fmt.Sprintf("invalid value %q for config option %q (valid: %s)", e.Value, e.Key, ids)
	}
	return fmt.Sprintf("config option %q: unknown error", e.Key)
}

// CheckConfiguration verifies that conf selects a declared value id for every
// config option in the document. All problems are collected, not just the
// first, so a caller can fix the whole query string in one round trip.
func CheckConfiguration(doc *model.Document, conf Configuration) []*ConfigError {
	keys := make([]string, 0, len(doc.Config))
	for k := range doc.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []*ConfigError
	for _, key := range keys {
		opt := doc.Config[key]
		id, ok := conf[key]
		if !ok || id == "" {
			errs = append(errs, &ConfigError{
				Kind:     ConfigIncomplete,
				Key:      key,
				ValidIDs: opt.ValueIDs(),
			})
			continue
		}
		if !opt.HasValueID(id) {
			errs = append(errs, &ConfigError{
				Kind:     ConfigInvalid,
				Key:      key,
				Value:    id,
				ValidIDs: opt.ValueIDs(),
			})
		}
	}
	return errs
}
