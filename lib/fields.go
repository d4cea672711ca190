package lib

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

/*
	Field identifiers are snake_case names, optionally namespaced with an
	inventory (i:) or computed (c:) prefix.
*/

const (
	InventoryPrefix = "i:"
	ComputedPrefix  = "c:"
)

var (
	reCamel       = regexp.MustCompile(`([a-z])([A-Z])`)
	reUnderscores = regexp.MustCompile(`_+`)
)

// acronyms are upper-cased in full by ToHeader
var acronyms = map[string]struct{}{
	"bom":    {},
	"cpl":    {},
	"dnp":    {},
	"esr":    {},
	"ic":     {},
	"id":     {},
	"ipn":    {},
	"jlc":    {},
	"jlcpcb": {},
	"lcsc":   {},
	"led":    {},
	"mfgpn":  {},
	"mpn":    {},
	"pcb":    {},
	"pos":    {},
	"pth":    {},
	"rohs":   {},
	"smd":    {},
	"smt":    {},
	"tht":    {},
	"url":    {},
}

/*
	splitPrefix detects a case-insensitive i: or c: prefix and returns it in
	lowercase along with the remainder.
*/
func splitPrefix(field string) (string, string) {
	if len(field) < 2 {
		return "", field
	}

	prefix := strings.ToLower(field[:2])
	if prefix == InventoryPrefix || prefix == ComputedPrefix {
		return prefix, field[2:]
	}

	return "", field
}

// Normalize canonicalizes a field name into the snake_case identifier space.
func Normalize(field string) string {
	if field == "" {
		return ""
	}

	prefix, name := splitPrefix(field)

	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	name = reCamel.ReplaceAllString(name, "${1}_${2}")
	name = strings.ToLower(name)
	name = reUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	// trimming can expose a prefix, as in " I:_Foo"
	if p, _ := splitPrefix(name); prefix == "" && p != "" {
		return Normalize(name)
	}

	return prefix + name
}

// ToHeader formats a field identifier as a display column header.
func ToHeader(field string) string {
	if field == "" {
		return ""
	}

	prefix, name := splitPrefix(field)

	parts := []string{}
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}

		if _, ok := acronyms[strings.ToLower(part)]; ok {
			parts = append(parts, strings.ToUpper(part))
			continue
		}

		parts = append(parts, capitalize(part))
	}

	return strings.ToUpper(prefix) + strings.Join(parts, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
