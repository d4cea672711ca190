package lib

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

/*
	Represents a schematic component
*/
type SchematicComponent struct {
	lines [][]string
	/*
		$Comp
		L Regulator_Linear:AMS1117-3.3 U1
		U 1 1 5E7A1557
		P 2650 1150
		F 0 "U1" H 2650 1392 50  0000 C CNN
		F 1 "AMS1117-3.3" H 2650 1301 50  0000 C CNN
		F 2 "Package_TO_SOT_SMD:SOT-223-3_TabPin2" H 2650 1350 50  0001 C CNN
		F 3 "http://www.advanced-monolithic.com/pdf/ds1117.pdf" H 2750 900 50  0001 C CNN
		F 4 "C6186" H 2650 1150 50  0001 C CNN "LCSC"
			1    2650 1150
			1    0    0    -1
		$EndComp
	*/
}

// field returns the value of field number n, or "" if absent.
func (st *SchematicComponent) field(n int) string {
	for _, line := range st.lines {
		if len(line) >= 3 && line[0] == "F" && line[1] == strconv.Itoa(n) {
			return line[2]
		}
	}

	return ""
}

func (st *SchematicComponent) Designator() string {
	return st.field(0)
}

func (st *SchematicComponent) Value() string {
	return st.field(1)
}

func (st *SchematicComponent) Footprint() string {
	return st.field(2)
}

func (st *SchematicComponent) Datasheet() string {
	if ds := st.field(3); ds != "~" {
		return ds
	}

	return ""
}

// Library returns the symbol library id from the L line.
func (st *SchematicComponent) Library() string {
	for _, line := range st.lines {
		if len(line) >= 2 && line[0] == "L" {
			return line[1]
		}
	}

	return ""
}

/*
	Custom fields carry their name as the last quoted token:
	F 4 "C6186" H 2650 1150 50  0001 C CNN "LCSC"
*/
func (st *SchematicComponent) Fields() [][2]string {
	fields := [][2]string{}
	for _, line := range st.lines {
		if len(line) < 11 || line[0] != "F" {
			continue
		}

		if n, err := strconv.Atoi(line[1]); err != nil || n < 4 {
			continue
		}

		fields = append(fields, [2]string{line[len(line)-1], line[2]})
	}

	return fields
}

func (st *SchematicComponent) Text() string {
	text := "$Comp\n"
	for _, line := range st.lines {
		text += strings.Join(line, " ") + "\n"
	}
	text += "$EndComp"

	return text
}

// Component converts the schematic symbol into a component record.
func (st *SchematicComponent) Component() Component {
	component := NewComponent(st.Designator(), st.Value(), st.Footprint())
	if ds := st.Datasheet(); ds != "" {
		component.Attributes.Set("datasheet", ds)
	}
	for _, field := range st.Fields() {
		component.Attributes.Set(field[0], field[1])
	}

	return component
}

// splitFields splits a line on spaces, keeping quoted strings together.
func splitFields(text string) []string {
	parts := []string{}
	var b strings.Builder
	quoted, escaped, inToken := false, false, false

	for _, r := range text {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			inToken = true
		case !quoted && (r == ' ' || r == '\t'):
			if inToken {
				parts = append(parts, b.String())
				b.Reset()
				inToken = false
			}
		default:
			b.WriteRune(r)
			inToken = true
		}
	}

	if inToken {
		parts = append(parts, b.String())
	}

	return parts
}

/*
	Return a list of components, given a legacy (KiCad 5) schematic
*/
func ParseSchematic(src io.Reader) ([]*SchematicComponent, error) {
	components := []*SchematicComponent{}
	scanner := bufio.NewScanner(src)

	var component *SchematicComponent
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "$Comp":
			component = &SchematicComponent{}
		case text == "$EndComp":
			if component != nil {
				components = append(components, component)
			}
			component = nil
		case component != nil:
			component.lines = append(component.lines, splitFields(text))
		}
	}

	return components, scanner.Err()
}

/*
	ReadSchematic returns one component per reference. Power symbols and
	flags (#PWR, #FLG) are dropped, and repeated units of a multi-unit symbol
	collapse to the first.
*/
func ReadSchematic(src io.Reader) ([]Component, error) {
	symbols, err := ParseSchematic(src)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	components := []Component{}
	for _, symbol := range symbols {
		reference := symbol.Designator()
		if reference == "" || strings.HasPrefix(reference, "#") {
			continue
		}
		if _, ok := seen[reference]; ok {
			continue
		}
		seen[reference] = struct{}{}

		components = append(components, symbol.Component())
	}

	return components, nil
}
