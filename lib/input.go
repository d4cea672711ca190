package lib

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var referenceSeparators = strings.NewReplacer(",", " ", ";", " ")

/*
	ReadComponents reads a CSV with a header row, such as an ungrouped KiCad
	BOM export. Reference, value and footprint columns are matched by name;
	every other column becomes an attribute. A reference cell listing several
	designators yields one component per designator.
*/
func ReadComponents(r io.Reader) ([]Component, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []Component{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read component header: %w", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(name), "${"), "}")
		columns[i] = Normalize(name)
	}

	components := []Component{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read component row %d: %w", line, err)
		}

		references := ""
		value, footprint := "", ""
		attributes := NewAttributes()
		for i, cell := range row {
			if i >= len(columns) {
				break
			}

			cell = strings.TrimSpace(cell)
			switch columns[i] {
			case "reference", "ref", "refs", "designator", "designators":
				references = cell
			case "value", "val", "comment":
				value = cell
			case "footprint":
				footprint = cell
			case "quantity", "qty":
			default:
				attributes.Set(columns[i], cell)
			}
		}

		for _, reference := range strings.Fields(referenceSeparators.Replace(references)) {
			component := Component{
				Reference:  reference,
				Value:      value,
				Footprint:  footprint,
				Attributes: attributes,
			}
			components = append(components, component)
		}
	}

	return components, nil
}

/*
	NormalizeProject resolves a project directory or .kicad_pro file to the
	file with the wanted extension next to it.
*/
func NormalizeProject(path, ext string) (string, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(path, "*.kicad_pro"))
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "", fmt.Errorf("%w: no .kicad_pro in %s", ErrUnsupportedInput, path)
		}
		path = matches[0]
	}

	if strings.EqualFold(filepath.Ext(path), ".kicad_pro") {
		candidate := strings.TrimSuffix(path, filepath.Ext(path)) + ext
		if !Exists(candidate) {
			return "", fmt.Errorf("%w: %s not found", ErrUnsupportedInput, candidate)
		}
		return candidate, nil
	}

	return path, nil
}

func readFile(path string, read func(io.Reader) error) error {
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()

	return read(fp)
}

// Loader reads components and placements from files, using kicad-cli for
// native KiCad documents.
type Loader struct {
	KiCad *KiCad
}

// LoadComponents reads .csv, legacy .sch, .kicad_sch or a KiCad project.
func (l *Loader) LoadComponents(ctx context.Context, path string) ([]Component, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".kicad_pro" || ext == "" {
		var err error
		if path, err = NormalizeProject(path, ".kicad_sch"); err != nil {
			return nil, err
		}
		ext = strings.ToLower(filepath.Ext(path))
	}

	var components []Component
	switch ext {
	case ".csv":
		err := readFile(path, func(r io.Reader) (err error) {
			components, err = ReadComponents(r)
			return
		})
		return components, err
	case ".sch":
		err := readFile(path, func(r io.Reader) (err error) {
			components, err = ReadSchematic(r)
			return
		})
		return components, err
	case ".kicad_sch":
		if l.KiCad == nil {
			return nil, ErrKiCadNotFound
		}

		dst, cleanup, err := l.KiCad.ExportBOM(ctx, path)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		return l.LoadComponents(ctx, dst)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
}

// LoadPlacements reads position .csv/.pos, .kicad_pcb or a KiCad project.
func (l *Loader) LoadPlacements(ctx context.Context, path string) ([]Placement, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".kicad_pro" || ext == "" {
		var err error
		if path, err = NormalizeProject(path, ".kicad_pcb"); err != nil {
			return nil, err
		}
		ext = strings.ToLower(filepath.Ext(path))
	}

	var placements []Placement
	switch ext {
	case ".csv":
		err := readFile(path, func(r io.Reader) (err error) {
			placements, err = ReadPlacements(r)
			return
		})
		return placements, err
	case ".pos":
		err := readFile(path, func(r io.Reader) (err error) {
			placements, err = ReadPlacementsASCII(r)
			return
		})
		return placements, err
	case ".kicad_pcb":
		if l.KiCad == nil {
			return nil, ErrKiCadNotFound
		}

		dst, cleanup, err := l.KiCad.ExportPositions(ctx, path)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		return l.LoadPlacements(ctx, dst)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
}
