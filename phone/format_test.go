package phone_test

import (
	"testing"

	"onboarding-service/phone"

	"github.com/stretchr/testify/assert"
)

func TestGetPhoneFormatKnownCountry(t *testing.T) {
	format := phone.GetPhoneFormat("Singapore")
	assert.Equal(t, 8, format.Length)
	assert.Equal(t, "XXXX XXXX", format.Pattern)
}

func TestGetPhoneFormatFallbackIsStable(t *testing.T) {
	first := phone.GetPhoneFormat("Atlantis")
	second := phone.GetPhoneFormat("Atlantis")
	assert.Equal(t, phone.DefaultFormat, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 10, first.Length)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "415 555 1234", phone.FormatNumber("4155551234", "XXX XXX XXXX"))
	// Shorter input truncates the template.
	assert.Equal(t, "415 5", phone.FormatNumber("4155", "XXX XXX XXXX"))
	assert.Equal(t, "415", phone.FormatNumber("415", "XXX XXX XXXX"))
	// Excess digits beyond the placeholder count are ignored.
	assert.Equal(t, "415 555 1234", phone.FormatNumber("41555512349999", "XXX XXX XXXX"))
	assert.Equal(t, "", phone.FormatNumber("", "XXX XXX XXXX"))
}

func TestFormatNumberRoundTrip(t *testing.T) {
	cases := map[string]string{
		"United States":  "4155551234",
		"United Kingdom": "7911123456",
		"Australia":      "412345678",
		"Singapore":      "81234567",
		"Germany":        "15112345678",
		"Atlantis":       "1234567890",
	}
	for country, digits := range cases {
		format := phone.GetPhoneFormat(country)
		assert.Len(t, digits, format.Length, country)
		formatted := phone.FormatNumber(digits, format.Pattern)
		assert.Equal(t, digits, phone.RestrictToNumbers(formatted), country)
	}
}

func TestRestrictToNumbers(t *testing.T) {
	assert.Equal(t, "4155551234", phone.RestrictToNumbers("(415) 555-1234"))
	assert.Equal(t, "", phone.RestrictToNumbers("abc +-"))

	// Idempotent: a second pass changes nothing.
	once := phone.RestrictToNumbers("+44 7911 123456")
	assert.Equal(t, once, phone.RestrictToNumbers(once))
}

func TestValidateLength(t *testing.T) {
	valid := phone.ValidateLength("4155551234", 10)
	assert.True(t, valid.IsValid)
	assert.False(t, valid.IsTooShort)
	assert.False(t, valid.IsTooLong)
	assert.Empty(t, valid.Message)

	short := phone.ValidateLength("415", 10)
	assert.False(t, short.IsValid)
	assert.True(t, short.IsTooShort)
	assert.False(t, short.IsTooLong)
	assert.Contains(t, short.Message, "too short")

	long := phone.ValidateLength("41555512345", 10)
	assert.False(t, long.IsValid)
	assert.False(t, long.IsTooShort)
	assert.True(t, long.IsTooLong)
	assert.Contains(t, long.Message, "too long")
}
