package timetable

import "ttcal/internal/model"

// Configuration is the caller's selection of one value id per config option
// declared by the document, keyed by option name.
type Configuration map[string]string

// Resolve turns one slot into a subject reference (or FREE) for the given
// configuration. It is a pure function: absent or unknown configuration keys
// simply fail to match, they are never errors at this layer. Completeness of
// the configuration is checked up front by CheckConfiguration.
func Resolve(s model.Slot, conf Configuration) string {
	switch s.Kind {
	case model.SlotSimple:
		id, ok := conf[s.Match]
		if !ok {
			return model.FreeCell
		}
		if ref, ok := s.Choices[id]; ok {
			return ref
		}
		return model.FreeCell

	case model.SlotComplex:
		// First full match in document order wins.
		for _, c := range s.ComplexChoices {
			if patternMatches(s.MatchKeys, c.Pattern, conf) {
				return c.Value
			}
		}
		return model.FreeCell
	}
	return model.FreeCell
}

// patternMatches tests one complex choice pattern positionally against the
// slot's match keys. A wildcard element matches any value.
func patternMatches(keys, pattern []string, conf Configuration) bool {
	if len(pattern) != len(keys) {
		return false
	}
	for i, key := range keys {
		if pattern[i] == model.Wildcard {
			continue
		}
		v, ok := conf[key]
		if !ok || v != pattern[i] {
			return false
		}
	}
	return true
}
