// Package phone holds E.164 helpers shared by the validator and the link
// builder.
package phone

import (
	"regexp"
	"strings"
)

var (
	e164Re   = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	digitsRe = regexp.MustCompile(`[^0-9]`)
)

// ValidateE164 reports whether the number matches the E.164 contract.
func ValidateE164(number string) bool {
	return e164Re.MatchString(number)
}

// CleanDigits strips the number down to digits only.
func CleanDigits(number string) string {
	return digitsRe.ReplaceAllString(number, "")
}

// FormatToE164 prepends '+' when the cleaned number looks like it already
// carries a country code. Returns the input unchanged when it cannot.
func FormatToE164(number string) string {
	cleaned := CleanDigits(number)
	if len(cleaned) >= 10 && len(cleaned) <= 15 {
		return "+" + cleaned
	}
	return number
}

// WhatsAppPhone returns the digits-only form expected by the deep-link
// hosts.
func WhatsAppPhone(number string) string {
	if ValidateE164(number) {
		return strings.TrimPrefix(number, "+")
	}
	return CleanDigits(number)
}
