package lib

import (
	"regexp"
	"strings"
)

// Attributes is an insertion-ordered string map. Keys are normalized field
// identifiers.
type Attributes struct {
	keys   []string
	values map[string]string
}

func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

// Set stores value under the normalized key, replacing any earlier value.
func (a *Attributes) Set(key, value string) {
	key = Normalize(key)
	if key == "" {
		return
	}

	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// SetDefault stores value only when key is not present yet.
func (a *Attributes) SetDefault(key, value string) {
	if _, ok := a.Lookup(key); ok {
		return
	}
	a.Set(key, value)
}

func (a *Attributes) Lookup(key string) (string, bool) {
	if a == nil {
		return "", false
	}

	value, ok := a.values[Normalize(key)]
	return value, ok
}

func (a *Attributes) Get(key string) string {
	value, _ := a.Lookup(key)
	return value
}

// First returns the first non-empty value among keys.
func (a *Attributes) First(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(a.Get(key)); value != "" {
			return value
		}
	}

	return ""
}

func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}

	return append([]string{}, a.keys...)
}

func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}

	return len(a.keys)
}

// Component is one schematic or board symbol instance.
type Component struct {
	Reference  string
	Value      string
	Footprint  string
	Attributes *Attributes
}

func NewComponent(reference, value, footprint string) Component {
	return Component{
		Reference:  reference,
		Value:      value,
		Footprint:  footprint,
		Attributes: NewAttributes(),
	}
}

var (
	reDesignator = regexp.MustCompile("[^a-zA-Z]+")
	rePackage    = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:^|[^A-Za-z])((?:SOT|SOD|SOIC|SSOP|TSSOP|MSOP|QFN|DFN|LQFP|TQFP|QFP|BGA|TO|SC|DO)-?\d+(?:-\d+)?)(?:$|[^0-9])`),
		regexp.MustCompile(`(?:^|[_-])(\d{4})(?:[_-]|$)`),
	}
)

// Prefix returns the letters of a reference designator, e.g. "R" for R12.
func Prefix(reference string) string {
	return reDesignator.ReplaceAllString(reference, "")
}

// FootprintName strips the library part of library:footprint.
func FootprintName(footprint string) string {
	if i := strings.LastIndex(footprint, ":"); i >= 0 {
		return footprint[i+1:]
	}

	return footprint
}

/*
	PackageToken derives a short package name from a footprint, e.g.
	R_0805_2012Metric -> 0805, SOT-23-5 -> SOT-23-5. Footprints that match no
	known pattern return the footprint name.
*/
func PackageToken(footprint string) string {
	name := FootprintName(footprint)
	for _, re := range rePackage {
		match := re.FindStringSubmatch(name)
		if match == nil {
			continue
		}

		return strings.ToUpper(match[1])
	}

	return name
}

// falsy values leave a flag unset. "~" is KiCad's empty field placeholder.
var falsy = map[string]struct{}{
	"": {}, "0": {}, "false": {}, "no": {}, "n": {}, "off": {}, "~": {},
}

/*
	IsTruthy reports whether an attribute value reads as a set flag. Any value
	other than a known false spelling is set, including the text kicad-cli
	writes for ${EXCLUDE_FROM_BOM} ("Excluded from BOM").
*/
func IsTruthy(value string) bool {
	_, ok := falsy[strings.ToLower(strings.TrimSpace(value))]
	return !ok
}

// IsDNP reports whether the attributes mark a do-not-populate part.
func IsDNP(attrs *Attributes) bool {
	return IsTruthy(attrs.Get("dnp")) || IsTruthy(attrs.Get("do_not_populate"))
}

/*
	MountType classifies attributes as "SMD", "PTH" or "" when unknown. The
	mount_type attribute wins over a bare smd flag.
*/
func MountType(attrs *Attributes) string {
	switch strings.ToLower(strings.TrimSpace(attrs.Get("mount_type"))) {
	case "smd", "smt", "surface_mount":
		return "SMD"
	case "tht", "pth", "through_hole", "thru_hole":
		return "PTH"
	}

	if value, ok := attrs.Lookup("smd"); ok {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "tht", "pth", "through_hole", "thru_hole":
			return "PTH"
		}
		if IsTruthy(value) {
			return "SMD"
		}
		return "PTH"
	}

	return ""
}
