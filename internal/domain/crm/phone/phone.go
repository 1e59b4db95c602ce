// Package phone canonicalizes phone numbers for display, lookup and lead dedup
package phone

import (
	"strings"
	"unicode"
)

const (
	countryCode = '7'
	trunkPrefix = '8'
)

// Digits strips everything except ASCII digits from raw
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the canonical "+7XXXXXXXXXX" form of raw.
// Input without any digits is returned unchanged. The result is at most
// one character longer than raw.
func Normalize(raw string) string {
	digits := Digits(raw)
	if digits == "" {
		return raw
	}

	switch {
	case len(digits) == 11 && digits[0] == trunkPrefix:
		digits = string(countryCode) + digits[1:]
	case len(digits) == 10:
		digits = string(countryCode) + digits
	}

	return "+" + digits
}
