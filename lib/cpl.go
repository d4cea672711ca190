package lib

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Units selects the coordinate unit used when rendering placements.
type Units int

const (
	Millimeters Units = iota
	Inches
)

const mmPerInch = 25.4

func (u Units) String() string {
	if u == Inches {
		return "in"
	}

	return "mm"
}

func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mm", "millimeter", "millimeters":
		return Millimeters, nil
	case "in", "inch", "inches":
		return Inches, nil
	}

	return Millimeters, fmt.Errorf("unknown units %q (expected mm or in)", s)
}

// Convert converts a millimeter value into u.
func (u Units) Convert(mm float64) float64 {
	if u == Inches {
		return mm / mmPerInch
	}

	return mm
}

// Layer is the board side a component is placed on.
type Layer int

const (
	Top Layer = iota
	Bottom
)

func (l Layer) String() string {
	if l == Bottom {
		return "Bottom"
	}

	return "Top"
}

// ParseLayer accepts the side spellings found in KiCad exports.
func ParseLayer(s string) (Layer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top", "front", "f.cu", "t":
		return Top, nil
	case "bottom", "back", "b.cu", "b":
		return Bottom, nil
	}

	return Top, fmt.Errorf("unknown layer %q", s)
}

// Placement is one physical component on the board. Coordinates are in
// millimeters and rotation in degrees.
type Placement struct {
	Reference  string
	Value      string
	Package    string
	Footprint  string
	X          float64
	Y          float64
	Rotation   float64
	Layer      Layer
	Attributes *Attributes
}

/*
	Read a KiCad position file exported as CSV:

	Ref,Val,Package,PosX,PosY,Rot,Side
	"C1","100nF","C_0603_1608Metric",120.6500,-85.0900,90.0000,top

	Columns are matched by name, so extra columns become attributes.
*/
func ReadPlacements(r io.Reader) ([]Placement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read position file: %w", err)
	}
	if len(records) == 0 {
		return []Placement{}, nil
	}

	return placementsFromRecords(records[0], records[1:])
}

/*
	Read a KiCad ASCII position file:

	### Footprint positions - created on ...
	## Unit = mm, Angle = deg.
	## Side : top
	# Ref     Val       Package                PosX       PosY       Rot  Side
	C1        100nF     C_0603_1608Metric    120.6500   -85.0900   90.0000  top
	## End
*/
func ReadPlacementsASCII(r io.Reader) ([]Placement, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	records := [][]string{}
	inches := false
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
		case strings.HasPrefix(text, "##"):
			if strings.Contains(strings.ToLower(text), "unit = inch") {
				inches = true
			}
		case strings.HasPrefix(text, "#"):
			header = splitFields(strings.TrimSpace(strings.TrimPrefix(text, "#")))
		default:
			records = append(records, splitFields(text))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if header == nil {
		return []Placement{}, nil
	}

	placements, err := placementsFromRecords(header, records)
	if err != nil {
		return nil, err
	}

	if inches {
		for i := range placements {
			placements[i].X *= mmPerInch
			placements[i].Y *= mmPerInch
		}
	}

	return placements, nil
}

func placementsFromRecords(header []string, records [][]string) ([]Placement, error) {
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = Normalize(strings.TrimPrefix(name, "#"))
	}

	placements := []Placement{}
	for n, row := range records {
		line := n + 2

		var err error
		placement := Placement{Attributes: NewAttributes()}
		for i, cell := range row {
			if i >= len(columns) {
				break
			}

			cell = strings.TrimSpace(cell)
			switch columns[i] {
			case "ref", "reference", "designator":
				placement.Reference = cell
			case "val", "value", "comment":
				placement.Value = cell
			case "package", "footprint":
				placement.Footprint = cell
			case "pos_x", "posx", "x", "mid_x":
				placement.X, err = strconv.ParseFloat(cell, 64)
			case "pos_y", "posy", "y", "mid_y":
				placement.Y, err = strconv.ParseFloat(cell, 64)
			case "rot", "rotation":
				placement.Rotation, err = strconv.ParseFloat(cell, 64)
			case "side", "layer":
				placement.Layer, err = ParseLayer(cell)
			default:
				placement.Attributes.Set(columns[i], cell)
			}

			if err != nil {
				return nil, fmt.Errorf("position row %d column %s: %w", line, header[i], err)
			}
		}

		if placement.Reference == "" {
			continue
		}

		placement.Package = PackageToken(placement.Footprint)
		placements = append(placements, placement)
	}

	return placements, nil
}

// POSFilter is an AND of independent per-placement predicates.
type POSFilter struct {
	Layer          *Layer
	SMDOnly        bool
	ExcludeDNP     bool
	ExcludeFromPOS bool
}

func DefaultPOSFilter() POSFilter {
	return POSFilter{ExcludeDNP: true, ExcludeFromPOS: true}
}

func (f POSFilter) Keep(p Placement) bool {
	if f.Layer != nil && p.Layer != *f.Layer {
		return false
	}
	if f.SMDOnly && MountType(p.Attributes) == "PTH" {
		return false
	}
	if f.ExcludeDNP && IsDNP(p.Attributes) {
		return false
	}
	if f.ExcludeFromPOS && IsTruthy(p.Attributes.Get("exclude_from_pos")) {
		return false
	}

	return true
}

func (f POSFilter) Apply(placements []Placement) []Placement {
	kept := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if f.Keep(p) {
			kept = append(kept, p)
		}
	}

	return kept
}

var posFields = []fieldDoc{
	{"reference", "Reference designator"},
	{"value", "Component value"},
	{"package", "Package derived from the footprint"},
	{"footprint", "Footprint name without library"},
	{"x", "X coordinate"},
	{"y", "Y coordinate"},
	{"rotation", "Rotation in degrees"},
	{"side", "Top or Bottom"},
	{"smd", "SMD or PTH mount type"},
}

// POSGenerator renders one row per placement.
type POSGenerator struct {
	Placements []Placement
	Units      Units

	// degrees added to the rotation of a footprint, keyed by footprint name
	RotationOffsets map[string]float64
}

func NewPOSGenerator(placements []Placement, filter POSFilter, units Units) *POSGenerator {
	return &POSGenerator{
		Placements: filter.Apply(placements),
		Units:      units,
	}
}

func (g *POSGenerator) Kind() OutputKind {
	return POS
}

func (g *POSGenerator) AvailableFields() *FieldSet {
	fields := NewFieldSet()
	for _, field := range posFields {
		fields.Add(field.name, field.description)
	}

	for _, p := range g.Placements {
		for _, key := range p.Attributes.Keys() {
			fields.Add(key, "Footprint attribute")
		}
	}

	return fields
}

// rotation returns the placement rotation plus any footprint offset in [0, 360).
func (g *POSGenerator) rotation(p Placement) float64 {
	offset, ok := g.RotationOffsets[FootprintName(p.Footprint)]
	if !ok {
		return p.Rotation
	}

	rotation := math.Mod(p.Rotation+offset, 360)
	if rotation < 0 {
		rotation += 360
	}

	return rotation
}

func (g *POSGenerator) FieldValue(p Placement, field string) string {
	switch field {
	case "reference":
		return p.Reference
	case "value":
		return p.Value
	case "package":
		return p.Package
	case "footprint":
		return FootprintName(p.Footprint)
	case "x":
		return strconv.FormatFloat(g.Units.Convert(p.X), 'f', 4, 64)
	case "y":
		return strconv.FormatFloat(g.Units.Convert(p.Y), 'f', 4, 64)
	case "rotation":
		return strconv.FormatFloat(g.rotation(p), 'f', 1, 64)
	case "side", "layer":
		return p.Layer.String()
	case "smd":
		return MountType(p.Attributes)
	}

	return p.Attributes.Get(field)
}

func (g *POSGenerator) Rows(fields []string) [][]string {
	rows := make([][]string, 0, len(g.Placements))
	for _, p := range g.Placements {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = g.FieldValue(p, field)
		}
		rows = append(rows, row)
	}

	return rows
}
