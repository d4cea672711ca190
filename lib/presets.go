package lib

import (
	"sort"
	"strings"
)

// Preset is a named, ordered field list. A nil Fields slice selects every
// field available in the current context.
type Preset struct {
	Name        string
	Description string
	Fields      []string
}

// All reports whether the preset is the "all available fields" sentinel.
func (p Preset) All() bool {
	return p.Fields == nil
}

// PresetTable maps lowercase preset names to presets.
type PresetTable map[string]Preset

/*
	Build a table from presets, keyed by lowercase name. The input slice is
	copied so the table does not alias caller-owned field lists.
*/
func NewPresetTable(presets ...Preset) PresetTable {
	table := make(PresetTable, len(presets))
	for _, preset := range presets {
		if preset.Fields != nil {
			preset.Fields = append([]string{}, preset.Fields...)
		}

		preset.Name = strings.ToLower(preset.Name)
		table[preset.Name] = preset
	}

	return table
}

// Lookup finds a preset by case-insensitive name.
func (t PresetTable) Lookup(name string) (Preset, bool) {
	preset, ok := t[strings.ToLower(name)]
	return preset, ok
}

// Names returns the sorted preset names.
func (t PresetTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

var (
	bomDefaultFields = []string{
		"reference", "quantity", "description", "value", "footprint", "lcsc", "datasheet", "smd",
	}
	posDefaultFields = []string{
		"reference", "x", "y", "rotation", "side", "footprint", "smd",
	}
)

// BOMPresets returns the built-in BOM preset table.
func BOMPresets() PresetTable {
	return NewPresetTable(
		Preset{
			Name:        "default",
			Description: "Reference, quantity, description, value, footprint, LCSC, datasheet and SMD flag",
			Fields:      bomDefaultFields,
		},
		Preset{
			Name:        "standard",
			Description: "Alias of default",
			Fields:      bomDefaultFields,
		},
		Preset{
			Name:        "generic",
			Description: "Manufacturer oriented columns for any assembly house",
			Fields: []string{
				"reference", "quantity", "description", "value", "package", "footprint",
				"manufacturer", "mfgpn", "fabricator_part_number", "smd",
			},
		},
		Preset{
			Name:        "minimal",
			Description: "Reference, quantity, value and LCSC part number",
			Fields:      []string{"reference", "quantity", "value", "lcsc"},
		},
		Preset{
			Name:        "all",
			Description: "Every available field",
		},
	)
}

// POSPresets returns the built-in placement preset table.
func POSPresets() PresetTable {
	return NewPresetTable(
		Preset{
			Name:        "default",
			Description: "Reference, X, Y, rotation, side, footprint and SMD flag",
			Fields:      posDefaultFields,
		},
		Preset{
			Name:        "standard",
			Description: "Alias of default",
			Fields:      posDefaultFields,
		},
		Preset{
			Name:        "generic",
			Description: "Reference, value, package, coordinates, rotation and side",
			Fields:      []string{"reference", "value", "package", "x", "y", "rotation", "side"},
		},
		Preset{
			Name:        "minimal",
			Description: "Reference, X, Y, rotation and side",
			Fields:      []string{"reference", "x", "y", "rotation", "side"},
		},
		Preset{
			Name:        "all",
			Description: "Every available field",
		},
	)
}
