package lib

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// stubGenerator renders each row as the field names suffixed with the row
// number.
type stubGenerator struct {
	kind   OutputKind
	fields []string
	rows   int
}

func (g *stubGenerator) Kind() OutputKind {
	return g.kind
}

func (g *stubGenerator) AvailableFields() *FieldSet {
	set := NewFieldSet()
	for _, field := range g.fields {
		set.Add(field, "")
	}
	return set
}

func (g *stubGenerator) Rows(fields []string) [][]string {
	rows := [][]string{}
	for i := 0; i < g.rows; i++ {
		row := []string{}
		for _, field := range fields {
			row = append(row, field+string(rune('1'+i)))
		}
		rows = append(rows, row)
	}
	return rows
}

func TestBuildTable(t *testing.T) {
	g := &stubGenerator{
		kind:   BOM,
		fields: []string{"reference", "quantity", "value", "footprint", "lcsc", "fabricator_part_number", "i:tolerance"},
		rows:   2,
	}

	table, err := BuildTable(g, BOMPresets(), nil, "+minimal,I:Tolerance")
	require.NoError(t, err)
	assert.Equal(t, []string{"reference", "quantity", "value", "lcsc", "i:tolerance"}, table.Fields)
	assert.Equal(t, []string{"Reference", "Quantity", "Value", "LCSC", "i:tolerance"}, table.Headers)
	assert.Equal(t, []string{"reference2", "quantity2", "value2", "lcsc2", "i:tolerance2"}, table.Rows[1])

	registry, err := LoadFabricators()
	require.NoError(t, err)
	jlc, err := registry.Get("jlc")
	require.NoError(t, err)

	table, err = BuildTable(g, BOMPresets(), jlc, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Comment", "Designator", "Footprint", "LCSC Part #"}, table.Headers)

	_, err = BuildTable(g, BOMPresets(), jlc, "+minimal,bogus")
	assert.True(t, errors.Is(err, ErrUnknownField))

	// a fabricator with only BOM columns cannot head a placement table
	bomOnly, err := ReadFabricator(strings.NewReader("id: x\nname: X\nbom_columns: {A: value}\n"))
	require.NoError(t, err)

	pos := &stubGenerator{kind: POS, fields: []string{"reference", "x", "y"}, rows: 1}
	table, err = BuildTable(pos, POSPresets(), bomOnly, "")
	assert.True(t, errors.Is(err, ErrInvalidFabricator))
	assert.Nil(t, table)

	table, err = BuildTable(g, BOMPresets(), bomOnly, "value,reference")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Reference"}, table.Headers)
}

func TestPresetsFor(t *testing.T) {
	_, ok := PresetsFor(POS).Lookup("default")
	require.True(t, ok)

	preset, _ := PresetsFor(POS).Lookup("minimal")
	assert.Equal(t, []string{"reference", "x", "y", "rotation", "side"}, preset.Fields)

	preset, _ = PresetsFor(BOM).Lookup("minimal")
	assert.Equal(t, []string{"reference", "quantity", "value", "lcsc"}, preset.Fields)
}

func TestWriteCSV(t *testing.T) {
	table := &Table{
		Headers: []string{"Designator", "Comment"},
		Rows:    [][]string{{"R1,R2", "10K"}, {"C1", `5"`}},
	}

	b := &bytes.Buffer{}
	require.NoError(t, WriteCSV(b, table))
	assert.Equal(t, "Designator,Comment\n\"R1,R2\",10K\nC1,\"5\"\"\"\n", b.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	table := &Table{
		Headers: []string{"Prefix", "Value"},
		Rows:    [][]string{{"R", "10K"}, {"C", "100nF"}},
	}

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteFile(csvPath, "", table))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "Prefix,Value\nR,10K\nC,100nF\n", string(data))

	xlsxPath := filepath.Join(dir, "out.xlsx")
	require.NoError(t, WriteFile(xlsxPath, "associations", table))

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"associations"}, f.GetSheetList())
	rows, err := f.GetRows("associations")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Prefix", "Value"}, {"R", "10K"}, {"C", "100nF"}}, rows)

	bundle := filepath.Join(dir, "out.zip")
	require.NoError(t, Bundle(bundle, []string{csvPath, xlsxPath}))
	assert.True(t, Exists(bundle))

	// an existing archive is replaced
	require.NoError(t, Bundle(bundle, []string{csvPath}))
	assert.True(t, Exists(bundle))
}
