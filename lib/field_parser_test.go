package lib

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bomAvailable() *FieldSet {
	available := NewFieldSet()
	for _, field := range []string{
		"reference", "quantity", "description", "value", "footprint", "lcsc", "datasheet", "smd",
		"package", "manufacturer", "mfgpn", "fabricator_part_number", "i:tolerance",
	} {
		available.Add(field, "")
	}

	return available
}

func TestPresetTable(t *testing.T) {
	presets := BOMPresets()
	assert.Equal(t, []string{"all", "default", "generic", "minimal", "standard"}, presets.Names())

	def, ok := presets.Lookup("DEFAULT")
	require.True(t, ok)
	standard, ok := presets.Lookup("standard")
	require.True(t, ok)
	assert.Equal(t, def.Fields, standard.Fields)

	all, ok := presets.Lookup("all")
	require.True(t, ok)
	assert.True(t, all.All())
	assert.False(t, def.All())

	_, ok = presets.Lookup("bogus")
	assert.False(t, ok)

	assert.Equal(t, []string{"all", "default", "generic", "minimal", "standard"}, POSPresets().Names())
}

func TestPresetTableCopiesFields(t *testing.T) {
	fields := []string{"reference", "value"}
	table := NewPresetTable(Preset{Name: "Mine", Fields: fields})
	fields[0] = "changed"

	preset, ok := table.Lookup("mine")
	require.True(t, ok)
	assert.Equal(t, []string{"reference", "value"}, preset.Fields)
}

func TestFieldSet(t *testing.T) {
	s := NewFieldSet()
	s.Add("value", "first")
	s.Add("reference", "")
	s.Add("value", "second")

	assert.Equal(t, []string{"value", "reference"}, s.Keys())
	assert.Equal(t, "first", s.Description("value"))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("reference"))
	assert.False(t, s.Has("lcsc"))
}

func TestResolveDedupOrder(t *testing.T) {
	r := NewResolver(BOMPresets(), nil, "")

	fields, err := r.Resolve("value,value,+minimal", bomAvailable())
	require.NoError(t, err)
	assert.Equal(t, []string{"value", "reference", "quantity", "lcsc"}, fields)
}

func TestResolveDefault(t *testing.T) {
	r := NewResolver(BOMPresets(), nil, "default")

	fields, err := r.Resolve("", bomAvailable())
	require.NoError(t, err)
	assert.Equal(t, bomDefaultFields, fields)

	blank, err := r.Resolve(" , ,", bomAvailable())
	require.NoError(t, err)
	assert.Equal(t, fields, blank)
}

func TestResolveLiteralFields(t *testing.T) {
	r := NewResolver(BOMPresets(), nil, "")

	fields, err := r.Resolve("+minimal, Manufacturer ,I:Tolerance,MFGPN", bomAvailable())
	require.NoError(t, err)
	assert.Equal(t, []string{"reference", "quantity", "value", "lcsc", "manufacturer", "i:tolerance", "mfgpn"}, fields)
}

func TestResolveAll(t *testing.T) {
	r := NewResolver(BOMPresets(), nil, "")
	available := bomAvailable()

	fields, err := r.Resolve("+ALL", available)
	require.NoError(t, err)
	assert.Equal(t, available.Keys(), fields)
}

func TestResolveUnknownPreset(t *testing.T) {
	r := NewResolver(BOMPresets(), nil, "")

	_, err := r.Resolve("value,+bogus", bomAvailable())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
	assert.Contains(t, err.Error(), "+bogus")
	assert.Contains(t, err.Error(), "+all, +default, +generic, +minimal, +standard")

	var perr *PresetError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bogus", perr.Name)
}

func TestResolveUnknownField(t *testing.T) {
	r := NewResolver(BOMPresets(), nil, "")

	_, err := r.Resolve("+minimal,Toleranse", bomAvailable())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Contains(t, err.Error(), `"Toleranse"`)
	assert.Contains(t, err.Error(), `"toleranse"`)

	// 13 available fields, only the first 10 sorted names are quoted
	assert.True(t, strings.HasSuffix(err.Error(), ", ..."))
	assert.Contains(t, err.Error(), "datasheet")
	assert.NotContains(t, err.Error(), "value")
}

func TestFieldErrorShortHint(t *testing.T) {
	err := &FieldError{Token: "X", Normalized: "x", Available: []string{"a", "b"}}
	assert.Equal(t, `unknown field: "X" (normalized: "x"). Available fields: a, b`, err.Error())
}

func TestResolveOverlay(t *testing.T) {
	overlay := NewPresetTable(
		Preset{Name: "jlc", Fields: []string{"reference", "value", "footprint", "lcsc"}},
		Preset{Name: "minimal", Fields: []string{"value"}},
	)
	r := NewResolver(BOMPresets(), overlay, "jlc")

	fields, err := r.Resolve("", bomAvailable())
	require.NoError(t, err)
	assert.Equal(t, []string{"reference", "value", "footprint", "lcsc"}, fields)

	fields, err = r.Resolve("+minimal", bomAvailable())
	require.NoError(t, err)
	assert.Equal(t, []string{"value"}, fields)

	assert.Equal(t, []string{"all", "default", "generic", "jlc", "minimal", "standard"}, r.PresetNames())

	_, err = r.Resolve("+nope", bomAvailable())
	assert.Contains(t, fmt.Sprint(err), "+jlc, +minimal")
}

func TestResolveMissingDefault(t *testing.T) {
	r := NewResolver(NewPresetTable(), nil, "default")

	_, err := r.Resolve("", bomAvailable())
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}
