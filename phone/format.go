package phone

import (
	"fmt"
	"strings"
)

// Format describes how one country's phone number is entered and displayed.
// Pattern marks each digit position with 'X'; Length is the exact digit count
// a valid number carries.
type Format struct {
	Pattern     string `json:"format"`
	Length      int    `json:"length"`
	Placeholder string `json:"placeholder"`
}

// DefaultFormat is the stable fallback for countries without a table entry:
// ten digits, generic 3-3-4 grouping. Same input always yields same output.
var DefaultFormat = Format{Pattern: "XXX XXX XXXX", Length: 10, Placeholder: "XXX XXX XXXX"}

var formats = map[string]Format{
	"United States":        {Pattern: "XXX XXX XXXX", Length: 10, Placeholder: "XXX XXX XXXX"},
	"Canada":               {Pattern: "XXX XXX XXXX", Length: 10, Placeholder: "XXX XXX XXXX"},
	"United Kingdom":       {Pattern: "XXXX XXX XXX", Length: 10, Placeholder: "XXXX XXX XXX"},
	"Australia":            {Pattern: "XXX XXX XXX", Length: 9, Placeholder: "XXX XXX XXX"},
	"New Zealand":          {Pattern: "XX XXX XXXX", Length: 9, Placeholder: "XX XXX XXXX"},
	"Ireland":              {Pattern: "XX XXX XXXX", Length: 9, Placeholder: "XX XXX XXXX"},
	"India":                {Pattern: "XXXXX XXXXX", Length: 10, Placeholder: "XXXXX XXXXX"},
	"Germany":              {Pattern: "XXXX XXXXXXX", Length: 11, Placeholder: "XXXX XXXXXXX"},
	"France":               {Pattern: "X XX XX XX XX", Length: 9, Placeholder: "X XX XX XX XX"},
	"Netherlands":          {Pattern: "X XX XX XX XX", Length: 9, Placeholder: "X XX XX XX XX"},
	"Spain":                {Pattern: "XXX XXX XXX", Length: 9, Placeholder: "XXX XXX XXX"},
	"Italy":                {Pattern: "XXX XXX XXXX", Length: 10, Placeholder: "XXX XXX XXXX"},
	"South Africa":         {Pattern: "XX XXX XXXX", Length: 9, Placeholder: "XX XXX XXXX"},
	"Singapore":            {Pattern: "XXXX XXXX", Length: 8, Placeholder: "XXXX XXXX"},
	"United Arab Emirates": {Pattern: "XX XXX XXXX", Length: 9, Placeholder: "XX XXX XXXX"},
	"Mexico":               {Pattern: "XXX XXX XXXX", Length: 10, Placeholder: "XXX XXX XXXX"},
	"Brazil":               {Pattern: "XX XXXXX XXXX", Length: 11, Placeholder: "XX XXXXX XXXX"},
	"Japan":                {Pattern: "XX XXXX XXXX", Length: 10, Placeholder: "XX XXXX XXXX"},
}

// GetPhoneFormat returns the entry format for a country, falling back to
// DefaultFormat for unmapped names. Never fails.
func GetPhoneFormat(country string) Format {
	if format, ok := formats[country]; ok {
		return format
	}
	return DefaultFormat
}

// FormatNumber lays raw digits into the pattern's placeholder positions, left
// to right. Output stops after the last available digit; digits beyond the
// pattern's capacity are ignored.
func FormatNumber(digits, pattern string) string {
	digits = RestrictToNumbers(digits)
	var builder strings.Builder
	var pending strings.Builder
	index := 0
	for _, char := range pattern {
		if char == 'X' {
			if index >= len(digits) {
				break
			}
			builder.WriteString(pending.String())
			pending.Reset()
			builder.WriteByte(digits[index])
			index++
			continue
		}
		pending.WriteRune(char)
	}
	return builder.String()
}

// RestrictToNumbers strips every rune outside 0-9.
func RestrictToNumbers(input string) string {
	var builder strings.Builder
	for _, char := range input {
		if char >= '0' && char <= '9' {
			builder.WriteRune(char)
		}
	}
	return builder.String()
}

// Verdict reports how a digit string compares against an expected length.
// At most one of IsTooShort/IsTooLong is set; Message is empty when valid.
type Verdict struct {
	IsValid    bool   `json:"isValid"`
	IsTooShort bool   `json:"isTooShort"`
	IsTooLong  bool   `json:"isTooLong"`
	Message    string `json:"message"`
}

// ValidateLength checks a digit string against the exact expected count.
func ValidateLength(digits string, expected int) Verdict {
	count := len(digits)
	switch {
	case count < expected:
		return Verdict{
			IsTooShort: true,
			Message:    fmt.Sprintf("Phone number is too short: %d of %d digits", count, expected),
		}
	case count > expected:
		return Verdict{
			IsTooLong: true,
			Message:   fmt.Sprintf("Phone number is too long: %d of %d digits", count, expected),
		}
	default:
		return Verdict{IsValid: true}
	}
}
