package lib

import (
	"fmt"
	"sort"
	"strings"
)

// FieldSet is an ordered set of available field identifiers with descriptions.
type FieldSet struct {
	keys         []string
	descriptions map[string]string
}

func NewFieldSet() *FieldSet {
	return &FieldSet{descriptions: make(map[string]string)}
}

// Add inserts a field, keeping the first description and position seen.
func (s *FieldSet) Add(field, description string) {
	if _, ok := s.descriptions[field]; ok {
		return
	}

	s.keys = append(s.keys, field)
	s.descriptions[field] = description
}

func (s *FieldSet) Has(field string) bool {
	_, ok := s.descriptions[field]
	return ok
}

func (s *FieldSet) Description(field string) string {
	return s.descriptions[field]
}

// Keys returns the fields in insertion order.
func (s *FieldSet) Keys() []string {
	return append([]string{}, s.keys...)
}

func (s *FieldSet) Len() int {
	return len(s.keys)
}

func (s *FieldSet) sorted() []string {
	keys := s.Keys()
	sort.Strings(keys)
	return keys
}

/*
	Resolver expands field expressions of the form "+preset,Field,i:Field"
	against a global preset table and an optional fabricator overlay. Overlay
	entries shadow global entries of the same name.
*/
type Resolver struct {
	Presets PresetTable
	Overlay PresetTable
	Default string
}

func NewResolver(presets, overlay PresetTable, def string) *Resolver {
	if def == "" {
		def = "default"
	}

	return &Resolver{
		Presets: presets,
		Overlay: overlay,
		Default: def,
	}
}

// Preset looks a name up in the overlay first, then the global table.
func (r *Resolver) Preset(name string) (Preset, error) {
	if preset, ok := r.Overlay.Lookup(name); ok {
		return preset, nil
	}
	if preset, ok := r.Presets.Lookup(name); ok {
		return preset, nil
	}

	return Preset{}, &PresetError{Name: name, Valid: r.PresetNames()}
}

// PresetNames returns the deduplicated, sorted names from both tables.
func (r *Resolver) PresetNames() []string {
	seen := map[string]struct{}{}
	names := []string{}
	for _, table := range []PresetTable{r.Overlay, r.Presets} {
		for name := range table {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names
}

func (r *Resolver) expand(preset Preset, available *FieldSet) []string {
	if preset.All() {
		return available.Keys()
	}

	return append([]string{}, preset.Fields...)
}

/*
	Resolve returns the ordered, deduplicated field list selected by arg. An
	empty arg, or one that yields no fields, selects the default preset.
*/
func (r *Resolver) Resolve(arg string, available *FieldSet) ([]string, error) {
	if strings.TrimSpace(arg) == "" {
		preset, err := r.Preset(r.Default)
		if err != nil {
			return nil, fmt.Errorf("default preset: %w", err)
		}

		return dedupe(r.expand(preset, available)), nil
	}

	fields := []string{}
	for _, token := range strings.Split(arg, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if strings.HasPrefix(token, "+") {
			preset, err := r.Preset(strings.ToLower(token[1:]))
			if err != nil {
				return nil, err
			}

			fields = append(fields, r.expand(preset, available)...)
			continue
		}

		field := Normalize(token)
		if !available.Has(field) {
			return nil, &FieldError{
				Token:      token,
				Normalized: field,
				Available:  available.sorted(),
			}
		}

		fields = append(fields, field)
	}

	fields = dedupe(fields)
	if len(fields) == 0 {
		return r.Resolve("", available)
	}

	return fields, nil
}

// dedupe drops repeated entries, keeping the first occurrence.
func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}

		seen[field] = struct{}{}
		out = append(out, field)
	}

	return out
}
