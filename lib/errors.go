package lib

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error values. Typed errors below unwrap to these so callers can
// use errors.Is without matching on message text.
var (
	ErrUnknownPreset     = errors.New("unknown preset")
	ErrUnknownField      = errors.New("unknown field")
	ErrUnknownFabricator = errors.New("unknown fabricator")
	ErrInvalidFabricator = errors.New("invalid fabricator configuration")
	ErrUnsupportedInput  = errors.New("unsupported input file")
	ErrKiCadNotFound     = errors.New("kicad-cli not found")
)

// maximum number of field names quoted in an unknown field message
const fieldHintLimit = 10

// PresetError reports a +preset token that no preset table defines.
type PresetError struct {
	Name  string
	Valid []string // sorted, without the leading +
}

func (e *PresetError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, name := range e.Valid {
		valid[i] = "+" + name
	}

	return fmt.Sprintf("unknown preset: +%s (valid presets: %s)", e.Name, strings.Join(valid, ", "))
}

func (e *PresetError) Unwrap() error {
	return ErrUnknownPreset
}

// FieldError reports a literal field token missing from the available fields.
type FieldError struct {
	Token      string
	Normalized string
	Available  []string // sorted
}

func (e *FieldError) Error() string {
	hint := e.Available
	more := false
	if len(hint) > fieldHintLimit {
		hint = hint[:fieldHintLimit]
		more = true
	}

	msg := fmt.Sprintf("unknown field: %q (normalized: %q). Available fields: %s",
		e.Token, e.Normalized, strings.Join(hint, ", "))
	if more {
		msg += ", ..."
	}

	return msg
}

func (e *FieldError) Unwrap() error {
	return ErrUnknownField
}
