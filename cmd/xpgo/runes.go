package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parseUnknownRune parses the --unknown-rune value. An empty value or
// "none" disables replacement and yields 0.
func parseUnknownRune(s string) (rune, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return 0, nil
	}
	return parseRune(s)
}

// parseRune parses a rune given in one of these forms:
// - Literal character (e.g., "*", "?")
// - Escaped Unicode: "\uXXXX", "\UXXXXXXXX"
// - Unicode notation: "U+XXXX"
// - Decimal: "63"
// - Hexadecimal: "0x3F"
func parseRune(s string) (rune, error) {
	if s == "" {
		return 0, fmt.Errorf("rune cannot be empty")
	}

	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}

	if r, ok := parseEscapedUnicode(s); ok {
		return r, nil
	}
	if r, ok := parseUnicodeNotation(s); ok {
		return r, nil
	}
	if r, ok := parseHexadecimal(s); ok {
		return r, nil
	}
	if r, ok := parseDecimal(s); ok {
		return r, nil
	}

	return 0, fmt.Errorf("invalid rune format: %s", s)
}

// validateRune rejects values outside Unicode and UTF-16 surrogates.
func validateRune(r rune) (rune, bool) {
	if r < 0 || r > utf8.MaxRune {
		return 0, false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return 0, false
	}
	return r, true
}

func parseEscapedUnicode(s string) (rune, bool) {
	var digits string
	switch {
	case strings.HasPrefix(s, "\\u") && len(s) == 6:
		digits = s[2:]
	case strings.HasPrefix(s, "\\U") && len(s) == 10:
		digits = s[2:]
	default:
		return 0, false
	}
	code, err := strconv.ParseInt(digits, 16, 32)
	if err != nil {
		return 0, false
	}
	return validateRune(rune(code))
}

func parseUnicodeNotation(s string) (rune, bool) {
	if !strings.HasPrefix(s, "U+") && !strings.HasPrefix(s, "u+") {
		return 0, false
	}
	code, err := strconv.ParseInt(s[2:], 16, 32)
	if err != nil {
		return 0, false
	}
	return validateRune(rune(code))
}

func parseHexadecimal(s string) (rune, bool) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, false
	}
	code, err := strconv.ParseInt(s[2:], 16, 32)
	if err != nil {
		return 0, false
	}
	return validateRune(rune(code))
}

func parseDecimal(s string) (rune, bool) {
	code, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return validateRune(rune(code))
}
