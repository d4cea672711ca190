package lib

// Generator produces rows for a BOM or placement output.
type Generator interface {
	Kind() OutputKind
	AvailableFields() *FieldSet
	Rows(fields []string) [][]string
}

// Table is a resolved output: field identifiers, the matching headers and
// the rendered rows, all positionally aligned.
type Table struct {
	Fields  []string
	Headers []string
	Rows    [][]string
}

/*
	BuildTable resolves fieldsArg against the generator's available fields,
	using the fabricator's presets and headers when a fabricator is given.
	A fabricator without a column block for the generator's kind is rejected
	with ErrInvalidFabricator. No rows are rendered when resolution fails.
*/
func BuildTable(g Generator, presets PresetTable, fabricator *Fabricator, fieldsArg string) (*Table, error) {
	kind := g.Kind()

	var columns ColumnMap
	if fabricator != nil {
		var err error
		if columns, err = fabricator.Columns(kind); err != nil {
			return nil, err
		}
	}

	resolver := NewResolver(presets, fabricator.Presets(kind), DefaultPresetName(fabricator, kind))

	fields, err := resolver.Resolve(fieldsArg, g.AvailableFields())
	if err != nil {
		return nil, err
	}

	return &Table{
		Fields:  fields,
		Headers: MapHeaders(columns, fields),
		Rows:    g.Rows(fields),
	}, nil
}

// DefaultPresetName is the fabricator's own preset when it defines one named
// after its id, otherwise "default".
func DefaultPresetName(fabricator *Fabricator, kind OutputKind) string {
	if fabricator == nil {
		return "default"
	}

	if _, ok := fabricator.Presets(kind).Lookup(fabricator.ID); ok {
		return fabricator.ID
	}

	return "default"
}

// PresetsFor returns the built-in preset table for kind.
func PresetsFor(kind OutputKind) PresetTable {
	if kind == POS {
		return POSPresets()
	}

	return BOMPresets()
}
