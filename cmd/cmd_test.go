package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/jbom/lib"
)

func testComponents(t *testing.T) []lib.Component {
	t.Helper()

	components, err := lib.ReadComponents(strings.NewReader(`Reference,Value,Footprint,LCSC,DNP
R1,10K,Resistor_SMD:R_0805_2012Metric,C17414,
R2,10K,Resistor_SMD:R_0805_2012Metric,C17414,
C1,100nF,Capacitor_SMD:C_0603_1608Metric,C14663,
C2,1uF,Capacitor_SMD:C_0603_1608Metric,,yes
`))
	require.NoError(t, err)

	return components
}

func jlcFabricator(t *testing.T) *lib.Fabricator {
	t.Helper()

	registry, err := lib.LoadFabricators()
	require.NoError(t, err)
	fab, err := registry.Get("jlc")
	require.NoError(t, err)

	return fab
}

func TestBuildBOM(t *testing.T) {
	table, err := buildBOM(testComponents(t), jlcFabricator(t), bomOptions{noLibrary: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Comment", "Designator", "Footprint", "LCSC Part #"}, table.Headers)
	assert.Equal(t, [][]string{
		{"100nF", "C1", "C_0603_1608Metric", "C14663"},
		{"10K", "R1,R2", "R_0805_2012Metric", "C17414"},
	}, table.Rows)

	table, err = buildBOM(testComponents(t), nil, bomOptions{noLibrary: true, includeDNP: true, fields: "+minimal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Reference", "Quantity", "Value", "LCSC"}, table.Headers)
	assert.Len(t, table.Rows, 3)

	_, err = buildBOM(testComponents(t), nil, bomOptions{noLibrary: true, fields: "+bogus"})
	assert.ErrorIs(t, err, lib.ErrUnknownPreset)
}

func TestBuildPOS(t *testing.T) {
	placements, err := lib.ReadPlacements(strings.NewReader(`Ref,Val,Package,PosX,PosY,Rot,Side
C1,100nF,C_0603_1608Metric,25.4,-50.8,90,top
J1,Conn,PinHeader_1x02,10,10,0,bottom
`))
	require.NoError(t, err)

	table, err := buildPOS(placements, jlcFabricator(t), posOptions{noRotations: true, layer: "top"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Designator", "Mid X", "Mid Y", "Layer", "Rotation"}, table.Headers)
	assert.Equal(t, [][]string{{"C1", "25.4000", "-50.8000", "Top", "90.0"}}, table.Rows)

	table, err = buildPOS(placements, nil, posOptions{noRotations: true, units: "in", fields: "reference,x"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"C1", "1.0000"}, {"J1", "0.3937"}}, table.Rows)

	_, err = buildPOS(placements, nil, posOptions{noRotations: true, layer: "inner"})
	assert.Error(t, err)
}

func TestPrintFields(t *testing.T) {
	b := &bytes.Buffer{}
	generator := lib.NewBOMGenerator(testComponents(t), lib.BOMFilter{}, nil)
	require.NoError(t, printFields(b, generator, jlcFabricator(t)))

	out := b.String()
	assert.Contains(t, out, "Presets (default +jlc):")
	assert.Contains(t, out, "+minimal")
	assert.Contains(t, out, "(all available fields)")
	assert.Contains(t, out, "LCSC Part #")
	assert.Contains(t, out, "Fabricator Part Number")
	assert.Contains(t, out, "Columns (jlc):")

	b.Reset()
	require.NoError(t, printFields(b, lib.NewPOSGenerator(nil, lib.POSFilter{}, lib.Millimeters), nil))
	assert.Contains(t, b.String(), "Presets (default +default):")
	assert.NotContains(t, b.String(), "Columns (")

	bomOnly, err := lib.ReadFabricator(strings.NewReader("id: x\nname: X\nbom_columns: {A: value}\n"))
	require.NoError(t, err)
	b.Reset()
	err = printFields(b, lib.NewPOSGenerator(nil, lib.POSFilter{}, lib.Millimeters), bomOnly)
	assert.ErrorIs(t, err, lib.ErrInvalidFabricator)
}

func TestProjectName(t *testing.T) {
	assert.Equal(t, "board", projectName(filepath.Join("projects", "board.kicad_pro")))
	assert.Equal(t, "board", projectName(filepath.Join("projects", "board")))
}
