// Package templates renders captions, request messages and reviews from
// agency formats or the built-in defaults.
package templates

import (
	"strings"
	"unicode"
)

// Field is one named placeholder value.
type Field struct {
	Name  string
	Value string
}

// Render substitutes each field into format in the order given. Only the
// first occurrence of each {name} is replaced; later repeats and unknown
// placeholders are left verbatim.
func Render(format string, fields ...Field) string {
	out := format
	for _, f := range fields {
		out = strings.Replace(out, "{"+f.Name+"}", f.Value, 1)
	}
	return out
}

// SplitList splits a comma-separated option into trimmed, non-empty items.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// stripSpace removes every whitespace rune, for building hashtags.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Title upper-cases the first letter of s.
func Title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
