package lib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const positionsCSV = `Ref,Val,Package,PosX,PosY,Rot,Side
"C1","100nF","C_0603_1608Metric",120.6500,-85.0900,90.0000,top
"J1","Conn","PinHeader_1x02_P2.54mm_Vertical",100.0000,-80.0000,270.0000,bottom
`

const positionsASCII = `### Footprint positions - created on 2024-01-01 ###
## Unit = inch, Angle = deg.
## Side : All
# Ref     Val       Package                PosX       PosY       Rot  Side
C1        100nF     C_0603_1608Metric    1.0000    -2.0000   90.0000  top
U1        "NE 555"  SOIC-8_3.9x4.9mm     0.5000     0.2500  180.0000  bottom
## End
`

func TestReadPlacements(t *testing.T) {
	placements, err := ReadPlacements(strings.NewReader(positionsCSV))
	require.NoError(t, err)
	require.Len(t, placements, 2)

	c1 := placements[0]
	assert.Equal(t, "C1", c1.Reference)
	assert.Equal(t, "100nF", c1.Value)
	assert.Equal(t, "0603", c1.Package)
	assert.InDelta(t, 120.65, c1.X, 1e-9)
	assert.InDelta(t, -85.09, c1.Y, 1e-9)
	assert.InDelta(t, 90, c1.Rotation, 1e-9)
	assert.Equal(t, Top, c1.Layer)
	assert.Equal(t, Bottom, placements[1].Layer)

	empty, err := ReadPlacements(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ReadPlacements(strings.NewReader("Ref,PosX\nC1,abc\n"))
	assert.Error(t, err)

	_, err = ReadPlacements(strings.NewReader("Ref,Side\nC1,sideways\n"))
	assert.Error(t, err)
}

func TestReadPlacementsASCII(t *testing.T) {
	placements, err := ReadPlacementsASCII(strings.NewReader(positionsASCII))
	require.NoError(t, err)
	require.Len(t, placements, 2)

	assert.InDelta(t, 25.4, placements[0].X, 1e-9)
	assert.InDelta(t, -50.8, placements[0].Y, 1e-9)
	assert.Equal(t, "NE 555", placements[1].Value)
	assert.Equal(t, "SOIC-8", placements[1].Package)
	assert.Equal(t, Bottom, placements[1].Layer)

	none, err := ReadPlacementsASCII(strings.NewReader("## End\n"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUnitsAndLayers(t *testing.T) {
	units, err := ParseUnits("Inches")
	require.NoError(t, err)
	assert.Equal(t, Inches, units)
	assert.Equal(t, "in", units.String())
	assert.InDelta(t, 1.0, units.Convert(25.4), 1e-9)
	assert.InDelta(t, 25.4, Millimeters.Convert(25.4), 1e-9)

	_, err = ParseUnits("cubits")
	assert.Error(t, err)

	layer, err := ParseLayer("B.Cu")
	require.NoError(t, err)
	assert.Equal(t, Bottom, layer)
	assert.Equal(t, "Bottom", layer.String())

	_, err = ParseLayer("inner1")
	assert.Error(t, err)
}

func placement(reference, footprint string, layer Layer, attrs ...string) Placement {
	p := Placement{Reference: reference, Footprint: footprint, Layer: layer, Attributes: NewAttributes()}
	for i := 0; i+1 < len(attrs); i += 2 {
		p.Attributes.Set(attrs[i], attrs[i+1])
	}

	return p
}

func TestPOSFilter(t *testing.T) {
	placements := []Placement{
		placement("C1", "C_0603", Top),
		placement("J1", "PinHeader", Top, "mount_type", "through_hole"),
		placement("C2", "C_0603", Bottom, "smd", "yes"),
		placement("R1", "R_0805", Top, "dnp", "1"),
		placement("TP1", "TestPoint", Top, "exclude_from_pos", "yes"),
		placement("TP2", "TestPoint", Top, "Exclude from POS", "Excluded from position files"),
	}

	refs := func(ps []Placement) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.Reference)
		}
		return out
	}

	assert.Equal(t, []string{"C1", "J1", "C2"}, refs(DefaultPOSFilter().Apply(placements)))
	assert.Equal(t, []string{"C1", "J1", "C2", "R1", "TP1", "TP2"}, refs(POSFilter{}.Apply(placements)))
	assert.Equal(t, []string{"C1", "C2", "R1", "TP1", "TP2"}, refs(POSFilter{SMDOnly: true}.Apply(placements)))

	bottom := Bottom
	assert.Equal(t, []string{"C2"}, refs(POSFilter{Layer: &bottom}.Apply(placements)))
}

func TestPOSGenerator(t *testing.T) {
	placements, err := ReadPlacements(strings.NewReader(positionsCSV))
	require.NoError(t, err)

	g := NewPOSGenerator(placements, DefaultPOSFilter(), Millimeters)
	assert.Equal(t, POS, g.Kind())
	assert.Equal(t, []string{"reference", "value", "package", "footprint", "x", "y", "rotation", "side", "smd"},
		g.AvailableFields().Keys())

	fields := []string{"reference", "x", "y", "rotation", "side"}
	assert.Equal(t, [][]string{
		{"C1", "120.6500", "-85.0900", "90.0", "Top"},
		{"J1", "100.0000", "-80.0000", "270.0", "Bottom"},
	}, g.Rows(fields))

	g.Units = Inches
	g.RotationOffsets = map[string]float64{"C_0603_1608Metric": 270}
	assert.Equal(t, []string{"C1", "4.7500", "-3.3500", "0.0", "Top"}, g.Rows(fields)[0])
	assert.Equal(t, "270.0", g.Rows(fields)[1][3])

	g.RotationOffsets = map[string]float64{"C_0603_1608Metric": -180}
	assert.Equal(t, "270.0", g.Rows(fields)[0][3])
}
