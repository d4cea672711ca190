package lib

import (
	"sort"
	"strconv"
	"strings"
)

// default attribute keys searched for supply-chain fields
var (
	PartNumberFields   = []string{"lcsc", "lcsc_part", "jlcpcb_part", "fabricator_part_number"}
	ManufacturerFields = []string{"manufacturer", "mfr", "mfg"}
	MFGPNFields        = []string{"mfgpn", "mpn", "mfr_part", "manufacturer_part_number", "mfg_pn"}
	DescriptionFields  = []string{"description", "desc"}
)

// BOMEntry is one line of the bill of materials: every component sharing a
// value and footprint.
type BOMEntry struct {
	Value                string
	Footprint            string
	Manufacturer         string
	MFGPN                string
	Description          string
	FabricatorPartNumber string
	Attributes           *Attributes

	references []string
	seen       map[string]struct{}
}

func newBOMEntry(value, footprint string) *BOMEntry {
	return &BOMEntry{
		Value:      value,
		Footprint:  footprint,
		Attributes: NewAttributes(),
		seen:       make(map[string]struct{}),
	}
}

// AddReference appends a reference. Adding a reference twice is a no-op.
func (e *BOMEntry) AddReference(reference string) {
	if _, ok := e.seen[reference]; ok {
		return
	}

	e.seen[reference] = struct{}{}
	e.references = append(e.references, reference)
}

// References returns the references in encounter order.
func (e *BOMEntry) References() []string {
	return append([]string{}, e.references...)
}

// Quantity is always the number of distinct references.
func (e *BOMEntry) Quantity() int {
	return len(e.references)
}

func (e *BOMEntry) FirstReference() string {
	if len(e.references) == 0 {
		return ""
	}

	return e.references[0]
}

func (e *BOMEntry) merge(component Component) {
	e.AddReference(component.Reference)

	for _, key := range component.Attributes.Keys() {
		e.Attributes.SetDefault(key, component.Attributes.Get(key))
	}
}

/*
	FieldValue renders a field of the entry. Fields outside the standard set
	read the merged attributes.
*/
func (e *BOMEntry) FieldValue(field string) string {
	switch field {
	case "reference":
		return strings.Join(e.references, ",")
	case "quantity":
		return strconv.Itoa(e.Quantity())
	case "value":
		return e.Value
	case "footprint":
		return FootprintName(e.Footprint)
	case "package":
		return PackageToken(e.Footprint)
	case "description":
		return e.Description
	case "manufacturer":
		return e.Manufacturer
	case "mfgpn":
		return e.MFGPN
	case "fabricator_part_number":
		return e.FabricatorPartNumber
	case "lcsc":
		if lcsc := e.Attributes.Get("lcsc"); lcsc != "" {
			return lcsc
		}
		return e.FabricatorPartNumber
	case "smd":
		return MountType(e.Attributes)
	case "dnp":
		if IsDNP(e.Attributes) {
			return "DNP"
		}
		return ""
	}

	return e.Attributes.Get(field)
}

type bomKey struct {
	value     string
	footprint string
}

// Aggregator groups components into BOM entries by (value, footprint).
type Aggregator struct {
	// attribute keys searched, in order, for the fabricator part number
	PartNumberFields []string
}

/*
	Aggregate groups components by exact (value, footprint). References keep
	encounter order and attributes merge first-seen-wins. Entries are sorted
	by their first reference.
*/
func (a *Aggregator) Aggregate(components []Component) []*BOMEntry {
	partFields := a.PartNumberFields
	if len(partFields) == 0 {
		partFields = PartNumberFields
	}

	groups := make(map[bomKey]*BOMEntry)
	entries := []*BOMEntry{}
	for _, component := range components {
		key := bomKey{component.Value, component.Footprint}

		entry, ok := groups[key]
		if !ok {
			entry = newBOMEntry(component.Value, component.Footprint)
			groups[key] = entry
			entries = append(entries, entry)
		}

		entry.merge(component)
	}

	for _, entry := range entries {
		entry.Manufacturer = entry.Attributes.First(ManufacturerFields...)
		entry.MFGPN = entry.Attributes.First(MFGPNFields...)
		entry.Description = entry.Attributes.First(DescriptionFields...)
		entry.FabricatorPartNumber = entry.Attributes.First(partFields...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return NaturalLess(entries[i].FirstReference(), entries[j].FirstReference())
	})

	return entries
}

// Aggregate groups components using the default part number fields.
func Aggregate(components []Component) []*BOMEntry {
	return (&Aggregator{}).Aggregate(components)
}

// PartLookup resolves a fabricator part number for a component group.
type PartLookup interface {
	FindMatching(prefix, value, footprint string) (string, bool)
}

// Enrich fills empty fabricator part numbers from lookup.
func Enrich(entries []*BOMEntry, lookup PartLookup) int {
	if lookup == nil {
		return 0
	}

	n := 0
	for _, entry := range entries {
		if entry.FabricatorPartNumber != "" {
			continue
		}

		part, ok := lookup.FindMatching(Prefix(entry.FirstReference()), entry.Value, entry.Footprint)
		if ok && part != "" {
			entry.FabricatorPartNumber = part
			n++
		}
	}

	return n
}

// BOMFilter selects which components reach aggregation.
type BOMFilter struct {
	ExcludeDNP     bool
	ExcludeFromBOM bool
}

// DefaultBOMFilter excludes DNP and exclude-from-BOM components.
func DefaultBOMFilter() BOMFilter {
	return BOMFilter{ExcludeDNP: true, ExcludeFromBOM: true}
}

func (f BOMFilter) Keep(component Component) bool {
	if f.ExcludeDNP && IsDNP(component.Attributes) {
		return false
	}
	if f.ExcludeFromBOM && IsTruthy(component.Attributes.Get("exclude_from_bom")) {
		return false
	}

	return true
}

// Apply returns the components the filter keeps, preserving order.
func (f BOMFilter) Apply(components []Component) []Component {
	kept := make([]Component, 0, len(components))
	for _, component := range components {
		if f.Keep(component) {
			kept = append(kept, component)
		}
	}

	return kept
}

type fieldDoc struct {
	name        string
	description string
}

// standard BOM fields, in presentation order
var bomFields = []fieldDoc{
	{"reference", "Comma separated reference designators"},
	{"quantity", "Number of components in the line"},
	{"value", "Component value"},
	{"footprint", "Footprint name without library"},
	{"package", "Package derived from the footprint"},
	{"description", "Component description"},
	{"manufacturer", "Manufacturer name"},
	{"mfgpn", "Manufacturer part number"},
	{"fabricator_part_number", "Fabricator catalogue part number"},
	{"lcsc", "LCSC part number"},
	{"datasheet", "Datasheet URL"},
	{"smd", "SMD or PTH mount type"},
	{"dnp", "Do not populate flag"},
}

// BOMGenerator renders aggregated BOM entries.
type BOMGenerator struct {
	Entries []*BOMEntry
}

func NewBOMGenerator(components []Component, filter BOMFilter, aggregator *Aggregator) *BOMGenerator {
	if aggregator == nil {
		aggregator = &Aggregator{}
	}

	return &BOMGenerator{Entries: aggregator.Aggregate(filter.Apply(components))}
}

func (g *BOMGenerator) Kind() OutputKind {
	return BOM
}

// AvailableFields lists the standard fields followed by every attribute key.
func (g *BOMGenerator) AvailableFields() *FieldSet {
	fields := NewFieldSet()
	for _, field := range bomFields {
		fields.Add(field.name, field.description)
	}

	for _, entry := range g.Entries {
		for _, key := range entry.Attributes.Keys() {
			fields.Add(key, "Component attribute")
		}
	}

	return fields
}

func (g *BOMGenerator) Rows(fields []string) [][]string {
	rows := make([][]string, 0, len(g.Entries))
	for _, entry := range g.Entries {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = entry.FieldValue(field)
		}
		rows = append(rows, row)
	}

	return rows
}
