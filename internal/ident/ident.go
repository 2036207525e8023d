// Package ident holds the identifier helpers shared by the translator and the
// database enum synthesizer.
package ident

import (
	"strings"
	"unicode"
)

// LowerFirst lowercases the first character, turning PascalCase into
// camelCase. Used for field names under the camel-case policy and for output
// file names.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// UpperFirst capitalizes the first character.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// MemberName sanitizes free text into a declaration-safe enum member name:
// split on whitespace, hyphen and underscore, capitalize each segment,
// concatenate. An empty result becomes "Unknown"; a leading digit gets the
// "Value" prefix so the member stays a valid identifier.
func MemberName(text string) string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})

	var sb strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		sb.WriteRune(unicode.ToUpper(runes[0]))
		sb.WriteString(string(runes[1:]))
	}

	name := sb.String()
	if name == "" {
		return "Unknown"
	}
	if unicode.IsDigit([]rune(name)[0]) {
		return "Value" + name
	}
	return name
}

// IsValid reports whether s is a syntactically valid TypeScript identifier.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		head := unicode.IsLetter(r) || r == '_' || r == '$'
		if i == 0 {
			if !head {
				return false
			}
			continue
		}
		if !head && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
