package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SlotKind distinguishes the two slot variants.
type SlotKind int

const (
	// SlotSimple resolves by direct lookup of one configuration key.
	SlotSimple SlotKind = iota
	// SlotComplex resolves by positional pattern matching over several keys.
	SlotComplex
)

// ComplexChoice is one pattern row of a complex slot. Pattern elements align
// positionally with the slot's match keys; Wildcard matches any value.
type ComplexChoice struct {
	Pattern []string `json:"pattern"`
	Value   string   `json:"value"`
}

// Slot is a configuration-dependent resolver for one schedule cell. The JSON
// shape of "match" selects the variant: a string means simple, an array means
// complex. Resolution dispatches on Kind, never on field presence.
type Slot struct {
	Kind SlotKind

	// Simple variant.
	Match   string
	Choices map[string]string

	// Complex variant.
	MatchKeys      []string
	ComplexChoices []ComplexChoice
}

// UnmarshalJSON decodes either slot variant based on the shape of "match".
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Match   json.RawMessage `json:"match"`
		Choices json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Match) == 0 {
		return errors.New(`slot: missing "match"`)
	}

	switch raw.Match[0] {
	case '"':
		s.Kind = SlotSimple
		if err := json.Unmarshal(raw.Match, &s.Match); err != nil {
			return fmt.Errorf(`slot: decode "match": %w`, err)
		}
		if err := json.Unmarshal(raw.Choices, &s.Choices); err != nil {
			return fmt.Errorf(`slot: decode simple "choices": %w`, err)
		}
	case '[':
		s.Kind = SlotComplex
		if err := json.Unmarshal(raw.Match, &s.MatchKeys); err != nil {
			return fmt.Errorf(`slot: decode "match" list: %w`, err)
		}
		if err := json.Unmarshal(raw.Choices, &s.ComplexChoices); err != nil {
			return fmt.Errorf(`slot: decode complex "choices": %w`, err)
		}
	default:
		return errors.New(`slot: "match" must be a string or a list of strings`)
	}
	return nil
}

// MarshalJSON re-encodes the slot in its interchange shape.
func (s Slot) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SlotSimple:
		return json.Marshal(struct {
			Match   string            `json:"match"`
			Choices map[string]string `json:"choices"`
		}{s.Match, s.Choices})
	case SlotComplex:
		return json.Marshal(struct {
			Match   []string        `json:"match"`
			Choices []ComplexChoice `json:"choices"`
		}{s.MatchKeys, s.ComplexChoices})
	default:
		return nil, fmt.Errorf("slot: unknown kind %d", s.Kind)
	}
}
