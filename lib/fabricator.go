package lib

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fabricators/*.fab.yaml
var builtinFabricators embed.FS

const fabricatorExt = ".fab.yaml"

// OutputKind selects the BOM or placement side of a fabricator.
type OutputKind int

const (
	BOM OutputKind = iota
	POS
)

func (k OutputKind) String() string {
	switch k {
	case BOM:
		return "bom"
	case POS:
		return "pos"
	default:
		return "unknown"
	}
}

// ParseOutputKind accepts bom, pos or cpl.
func ParseOutputKind(s string) (OutputKind, error) {
	switch strings.ToLower(s) {
	case "bom":
		return BOM, nil
	case "pos", "cpl":
		return POS, nil
	}

	return BOM, fmt.Errorf("unknown output kind %q (expected bom or pos)", s)
}

// Column pairs an output header with the field it renders.
type Column struct {
	Header string
	Field  string
}

// ColumnMap is a header -> field table in declaration order.
type ColumnMap []Column

func (m *ColumnMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: columns must be a mapping of header to field", value.Line)
	}

	columns := ColumnMap{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: column entries must be scalars", key.Line)
		}

		columns = append(columns, Column{Header: key.Value, Field: Normalize(val.Value)})
	}

	*m = columns
	return nil
}

/*
	Reverse builds field -> header. When several headers name the same field
	the first declared header wins.
*/
func (m ColumnMap) Reverse() map[string]string {
	reverse := make(map[string]string, len(m))
	for _, column := range m {
		if _, ok := reverse[column.Field]; ok {
			continue
		}
		reverse[column.Field] = column.Header
	}

	return reverse
}

// Fields returns the distinct fields in declaration order.
func (m ColumnMap) Fields() []string {
	fields := make([]string, 0, len(m))
	for _, column := range m {
		fields = append(fields, column.Field)
	}

	return dedupe(fields)
}

// DefaultHeaders is the built-in field -> header table for the common fields.
var DefaultHeaders = map[string]string{
	"reference":              "Reference",
	"quantity":               "Quantity",
	"value":                  "Value",
	"footprint":              "Footprint",
	"package":                "Package",
	"description":            "Description",
	"manufacturer":           "Manufacturer",
	"mfgpn":                  "MFGPN",
	"fabricator_part_number": "Fabricator Part Number",
	"lcsc":                   "LCSC",
	"datasheet":              "Datasheet",
	"smd":                    "SMD",
	"dnp":                    "DNP",
	"x":                      "X",
	"y":                      "Y",
	"rotation":               "Rotation",
	"side":                   "Side",
}

/*
	MapHeaders returns one header per field. Fabricator headers take
	precedence, then DefaultHeaders, then the field identifier itself.
*/
func MapHeaders(columns ColumnMap, fields []string) []string {
	reverse := columns.Reverse()

	headers := make([]string, len(fields))
	for i, field := range fields {
		if header, ok := reverse[field]; ok {
			headers[i] = header
		} else if header, ok := DefaultHeaders[field]; ok {
			headers[i] = header
		} else {
			headers[i] = field
		}
	}

	return headers
}

type presetFile struct {
	Description string   `yaml:"description"`
	Fields      []string `yaml:"fields"`
}

type fabricatorFile struct {
	ID               string                           `yaml:"id"`
	Name             string                           `yaml:"name"`
	Description      string                           `yaml:"description"`
	PartNumberFields []string                         `yaml:"part_number_fields"`
	POSUnits         string                           `yaml:"pos_units"`
	BOMColumns       ColumnMap                        `yaml:"bom_columns"`
	POSColumns       ColumnMap                        `yaml:"pos_columns"`
	Presets          map[string]map[string]presetFile `yaml:"presets"`
}

// Fabricator describes an assembly house and its expected CSV columns.
type Fabricator struct {
	ID               string
	Name             string
	Description      string
	PartNumberFields []string
	POSUnits         Units
	BOMColumns       ColumnMap
	POSColumns       ColumnMap

	presets map[OutputKind]PresetTable
}

// Columns returns the column table for kind, failing when it is empty.
func (f *Fabricator) Columns(kind OutputKind) (ColumnMap, error) {
	columns := f.BOMColumns
	if kind == POS {
		columns = f.POSColumns
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: fabricator %s has no %s_columns", ErrInvalidFabricator, f.ID, kind)
	}

	return columns, nil
}

// Presets returns the fabricator preset overlay for kind, possibly empty.
func (f *Fabricator) Presets(kind OutputKind) PresetTable {
	if f == nil || f.presets[kind] == nil {
		return PresetTable{}
	}

	return f.presets[kind]
}

// ReadFabricator decodes and validates a fabricator YAML document.
func ReadFabricator(r io.Reader) (*Fabricator, error) {
	file := fabricatorFile{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFabricator, err)
	}

	if file.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidFabricator)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("%w: fabricator %s: missing name", ErrInvalidFabricator, file.ID)
	}
	if len(file.BOMColumns) == 0 && len(file.POSColumns) == 0 {
		return nil, fmt.Errorf("%w: fabricator %s: bom_columns or pos_columns must be a non-empty mapping",
			ErrInvalidFabricator, file.ID)
	}

	units := Millimeters
	if file.POSUnits != "" {
		var err error
		if units, err = ParseUnits(file.POSUnits); err != nil {
			return nil, fmt.Errorf("%w: fabricator %s: %s", ErrInvalidFabricator, file.ID, err)
		}
	}

	fabricator := &Fabricator{
		ID:               strings.ToLower(file.ID),
		Name:             file.Name,
		Description:      file.Description,
		POSUnits:         units,
		BOMColumns:       file.BOMColumns,
		POSColumns:       file.POSColumns,
		PartNumberFields: make([]string, 0, len(file.PartNumberFields)),
		presets:          map[OutputKind]PresetTable{},
	}

	for _, field := range file.PartNumberFields {
		fabricator.PartNumberFields = append(fabricator.PartNumberFields, Normalize(field))
	}

	for kindName, presets := range file.Presets {
		kind, err := ParseOutputKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("%w: fabricator %s: presets: %s", ErrInvalidFabricator, file.ID, err)
		}

		list := []Preset{}
		for name, preset := range presets {
			var fields []string
			if preset.Fields != nil {
				fields = make([]string, 0, len(preset.Fields))
				for _, field := range preset.Fields {
					fields = append(fields, Normalize(field))
				}
			}

			list = append(list, Preset{Name: name, Description: preset.Description, Fields: fields})
		}
		fabricator.presets[kind] = NewPresetTable(list...)
	}

	return fabricator, nil
}

// FabricatorRegistry holds loaded fabricators by id.
type FabricatorRegistry struct {
	fabricators map[string]*Fabricator
}

func NewFabricatorRegistry() *FabricatorRegistry {
	return &FabricatorRegistry{fabricators: make(map[string]*Fabricator)}
}

func (r *FabricatorRegistry) Add(f *Fabricator) {
	r.fabricators[f.ID] = f
}

// Get finds a fabricator by case-insensitive id.
func (r *FabricatorRegistry) Get(id string) (*Fabricator, error) {
	f, ok := r.fabricators[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownFabricator, id, strings.Join(r.IDs(), ", "))
	}

	return f, nil
}

// IDs returns the sorted fabricator ids.
func (r *FabricatorRegistry) IDs() []string {
	ids := make([]string, 0, len(r.fabricators))
	for id := range r.fabricators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (r *FabricatorRegistry) loadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fabricatorExt) {
			continue
		}

		data, err := fs.ReadFile(fsys, filepath.ToSlash(filepath.Join(dir, entry.Name())))
		if err != nil {
			return err
		}

		f, err := ReadFabricator(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}

		r.Add(f)
	}

	return nil
}

/*
	LoadFabricators loads the built-in fabricators, then every *.fab.yaml in
	dirs. Later definitions replace earlier ones with the same id.
*/
func LoadFabricators(dirs ...string) (*FabricatorRegistry, error) {
	registry := NewFabricatorRegistry()
	if err := registry.loadFS(builtinFabricators, "fabricators"); err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if !Exists(dir) {
			return nil, fmt.Errorf("%w: fabricators directory %s does not exist", ErrInvalidFabricator, dir)
		}

		if err := registry.loadFS(os.DirFS(dir), "."); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
