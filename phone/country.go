package phone

import "strings"

// DefaultDialCode is the stable fallback for unmapped country names.
const DefaultDialCode = "+1"

var dialCodes = map[string]string{
	"United States":        "+1",
	"Canada":               "+1",
	"United Kingdom":       "+44",
	"Australia":            "+61",
	"New Zealand":          "+64",
	"Ireland":              "+353",
	"India":                "+91",
	"Germany":              "+49",
	"France":               "+33",
	"Netherlands":          "+31",
	"Spain":                "+34",
	"Italy":                "+39",
	"South Africa":         "+27",
	"Singapore":            "+65",
	"United Arab Emirates": "+971",
	"Mexico":               "+52",
	"Brazil":               "+55",
	"Japan":                "+81",
}

// DialCode returns the international dialing code for a country name.
// It is total: unknown input yields DefaultDialCode, never an error.
func DialCode(country string) string {
	if code, ok := dialCodes[strings.TrimSpace(country)]; ok {
		return code
	}
	return DefaultDialCode
}

var knownCodes = func() map[string]bool {
	set := make(map[string]bool, len(dialCodes))
	for _, code := range dialCodes {
		set[code] = true
	}
	return set
}()

// SplitNumber reconstructs (dialCode, digits) from a stored phone number. A
// leading '+' with one to three digits is the dial code; the longest prefix
// matching a known code wins, so "+441234567890" splits as "+44", not "+441".
// Anything else falls back to the country's default code with the whole
// stripped string as the body.
func SplitNumber(stored, country string) (string, string) {
	if strings.HasPrefix(stored, "+") {
		rest := stored[1:]
		count := 0
		for count < len(rest) && count < 3 && rest[count] >= '0' && rest[count] <= '9' {
			count++
		}
		for width := count; width > 0; width-- {
			if knownCodes["+"+rest[:width]] {
				return "+" + rest[:width], RestrictToNumbers(rest[width:])
			}
		}
		if count > 0 {
			return "+" + rest[:count], RestrictToNumbers(rest[count:])
		}
	}
	return DialCode(country), RestrictToNumbers(stored)
}
