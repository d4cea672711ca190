package lib

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const componentsCSV = `"Refs","Value","Footprint","Qty","${DNP}","LCSC Part"
"R1,R2","10K","Resistor_SMD:R_0805_2012Metric","2","","C17414"
"C1","100nF","Capacitor_SMD:C_0603_1608Metric","1","DNP",""
"","ignored","","0","",""
`

func TestReadComponents(t *testing.T) {
	components, err := ReadComponents(strings.NewReader(componentsCSV))
	require.NoError(t, err)
	require.Len(t, components, 3)

	assert.Equal(t, "R1", components[0].Reference)
	assert.Equal(t, "R2", components[1].Reference)
	assert.Equal(t, "10K", components[1].Value)
	assert.Equal(t, "C17414", components[1].Attributes.Get("lcsc_part"))
	assert.Equal(t, []string{"dnp", "lcsc_part"}, components[0].Attributes.Keys())

	assert.True(t, IsDNP(components[2].Attributes))

	entries := Aggregate(DefaultBOMFilter().Apply(components))
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Quantity())
	assert.Equal(t, "C17414", entries[0].FabricatorPartNumber)

	empty, err := ReadComponents(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadComponentsSeparators(t *testing.T) {
	components, err := ReadComponents(strings.NewReader("Reference,Value\n\"R1; R2 R3\",1K\n"))
	require.NoError(t, err)
	require.Len(t, components, 3)
	assert.Equal(t, "R3", components[2].Reference)
}

func TestNormalizeProject(t *testing.T) {
	dir := t.TempDir()
	pro := filepath.Join(dir, "board.kicad_pro")
	sch := filepath.Join(dir, "board.kicad_sch")
	require.NoError(t, os.WriteFile(pro, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(sch, []byte("(kicad_sch)"), 0644))

	path, err := NormalizeProject(dir, ".kicad_sch")
	require.NoError(t, err)
	assert.Equal(t, sch, path)

	path, err = NormalizeProject(pro, ".kicad_sch")
	require.NoError(t, err)
	assert.Equal(t, sch, path)

	_, err = NormalizeProject(pro, ".kicad_pcb")
	assert.True(t, errors.Is(err, ErrUnsupportedInput))

	_, err = NormalizeProject(t.TempDir(), ".kicad_sch")
	assert.True(t, errors.Is(err, ErrUnsupportedInput))
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "bom.csv")
	posPath := filepath.Join(dir, "board-all.pos")
	require.NoError(t, os.WriteFile(csvPath, []byte(componentsCSV), 0644))
	require.NoError(t, os.WriteFile(posPath, []byte(positionsASCII), 0644))

	loader := &Loader{}
	ctx := context.Background()

	components, err := loader.LoadComponents(ctx, csvPath)
	require.NoError(t, err)
	assert.Len(t, components, 3)

	placements, err := loader.LoadPlacements(ctx, posPath)
	require.NoError(t, err)
	assert.Len(t, placements, 2)

	// native documents need kicad-cli
	_, err = loader.LoadComponents(ctx, filepath.Join(dir, "board.kicad_sch"))
	assert.True(t, errors.Is(err, ErrKiCadNotFound))

	_, err = loader.LoadPlacements(ctx, filepath.Join(dir, "board.kicad_pcb"))
	assert.True(t, errors.Is(err, ErrKiCadNotFound))

	_, err = loader.LoadComponents(ctx, filepath.Join(dir, "notes.txt"))
	assert.True(t, errors.Is(err, ErrUnsupportedInput))
}
