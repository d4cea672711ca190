package lib

import (
	"bytes"
	"encoding/gob"
	"os"
	"strconv"
	"strings"
	"unicode"
)

func Exists(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	} else if os.IsNotExist(err) {
		return false
	}

	return true
}

/*
	return an encoded object as bytes
*/
func Marshal(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	err := gob.NewEncoder(b).Encode(v)
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

/*
	return a decoded object from bytes
*/
func Unmarshal(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	return gob.NewDecoder(b).Decode(v)
}

/*
	bcKey identifies a part by designator prefix, value and footprint, so
	that every 10K 0805 resistor shares one association.
*/
func bcKey(prefix, value, footprint string) []byte {
	return []byte(strings.Join([]string{
		strings.ToUpper(prefix),
		value,
		FootprintName(footprint),
	}, "\x00"))
}

func splitKey(key []byte) []string {
	return strings.Split(string(key), "\x00")
}

// chunk splits s into alternating runs of digits and non-digits.
func chunk(s string) []string {
	chunks := []string{}
	start := 0
	for i, r := range s {
		if i == 0 {
			continue
		}
		prev := rune(s[i-1])
		if unicode.IsDigit(r) != unicode.IsDigit(prev) {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}

	return chunks
}

/*
	NaturalLess orders strings with embedded numbers by value, so R2 sorts
	before R10.
*/
func NaturalLess(a, b string) bool {
	ca, cb := chunk(a), chunk(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] == cb[i] {
			continue
		}

		na, errA := strconv.Atoi(ca[i])
		nb, errB := strconv.Atoi(cb[i])
		if errA == nil && errB == nil {
			if na != nb {
				return na < nb
			}
			continue
		}

		return ca[i] < cb[i]
	}

	return len(ca) < len(cb)
}
