// Package validator sanitizes raw admin input into typed, safe values.
// Every function returns a Result instead of an error: invalid input still
// yields a best-effort sanitized fallback so callers can aggregate field
// errors across a whole form submission.
package validator

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

const (
	// MaxMessageLength bounds message templates.
	MaxMessageLength = 1000
	// MaxPhoneLength bounds phone numbers after cleanup.
	MaxPhoneLength = 20
	// MaxCookieNameLength bounds a single consent cookie name.
	MaxCookieNameLength = 100
	// MaxEventNameLength bounds the tracking event name.
	MaxEventNameLength = 50

	// DefaultThemeColor is WhatsApp green.
	DefaultThemeColor = "#25D366"
	// DefaultEventName is used when the tracking event name is left empty.
	DefaultEventName = "whatsapp_click"
)

var (
	nonPhoneRe   = regexp.MustCompile(`[^+\d]`)
	e164Re       = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	hexColorRe   = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	timeRe       = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
	cookieNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	eventNameRe  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	safeURLRe    = regexp.MustCompile(`(?i)^(https?://|wa\.me/)`)

	allowedTagRe = regexp.MustCompile(`(?i)^</?\s*(br|strong|em|u)\s*/?>$`)
	htmlTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)

	jsProtocolRe  = regexp.MustCompile(`(?i)javascript:`)
	dataProtoRe   = regexp.MustCompile(`(?i)data:`)
	vbsProtocolRe = regexp.MustCompile(`(?i)vbscript:`)
	eventAttrRe   = regexp.MustCompile(`(?i)on\w+\s*=`)
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
)

// Result is the outcome of a single-value validation.
type Result struct {
	Valid     bool
	Sanitized string
	Error     string
}

// ListResult is the outcome of an allow-list validation.
type ListResult struct {
	Valid     bool
	Sanitized []string
	Error     string
}

// ValidatePhone strips everything except '+' and digits and checks the
// E.164 contract.
func ValidatePhone(phone string) Result {
	sanitized := nonPhoneRe.ReplaceAllString(phone, "")

	if sanitized == "" {
		return Result{Valid: false, Sanitized: "", Error: "phone number is required"}
	}
	if len(sanitized) > MaxPhoneLength {
		return Result{Valid: false, Sanitized: sanitized, Error: "phone number is too long"}
	}
	if !e164Re.MatchString(sanitized) {
		return Result{Valid: false, Sanitized: sanitized, Error: "phone number must be in E.164 format (e.g., +905551112233)"}
	}

	return Result{Valid: true, Sanitized: sanitized}
}

// ValidateMessageTemplate bounds the template length and strips everything
// but the inline formatting allow-list plus known XSS vectors.
func ValidateMessageTemplate(message string) Result {
	if message == "" {
		return Result{Valid: false, Sanitized: "", Error: "message template is required"}
	}
	if len(message) > MaxMessageLength {
		return Result{Valid: false, Sanitized: message, Error: fmt.Sprintf("message template is too long (max %d characters)", MaxMessageLength)}
	}

	// Script and style blocks go first so their contents never survive as
	// plain text after tag stripping.
	sanitized := removeXSSVectors(message)
	sanitized = stripTags(sanitized)

	return Result{Valid: true, Sanitized: sanitized}
}

// ValidateColor normalizes a hex color, defaulting to WhatsApp green.
func ValidateColor(color string) Result {
	sanitized := strings.TrimSpace(color)

	if sanitized == "" {
		sanitized = DefaultThemeColor
	}
	if !strings.HasPrefix(sanitized, "#") {
		sanitized = "#" + sanitized
	}
	if !hexColorRe.MatchString(sanitized) {
		return Result{Valid: false, Sanitized: DefaultThemeColor, Error: "invalid color format, use hex format like #25D366"}
	}

	return Result{Valid: true, Sanitized: sanitized}
}

// ValidateTime checks the HH:MM clock format.
func ValidateTime(value string) Result {
	sanitized := strings.TrimSpace(value)

	if sanitized == "" {
		return Result{Valid: false, Sanitized: "", Error: "time is required"}
	}
	if !timeRe.MatchString(sanitized) {
		return Result{Valid: false, Sanitized: sanitized, Error: "invalid time format, use HH:MM (e.g., 09:00)"}
	}

	return Result{Valid: true, Sanitized: sanitized}
}

// ValidateCookieNames validates a comma separated list of consent cookie
// names. The first offending name aborts the whole list.
func ValidateCookieNames(cookies string) Result {
	sanitized := strings.TrimSpace(cookies)
	if sanitized == "" {
		return Result{Valid: true, Sanitized: ""}
	}

	var validNames []string
	for _, name := range strings.Split(sanitized, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if len(name) > MaxCookieNameLength {
			return Result{Valid: false, Sanitized: sanitized, Error: fmt.Sprintf("cookie name %q is too long", name)}
		}
		if !cookieNameRe.MatchString(name) {
			return Result{Valid: false, Sanitized: sanitized, Error: fmt.Sprintf("invalid cookie name %q, use only letters, numbers, underscore, and hyphen", name)}
		}
		validNames = append(validNames, name)
	}

	return Result{Valid: true, Sanitized: strings.Join(validNames, ",")}
}

// ValidateEventName validates the tracking event name, defaulting it when
// the field is left empty.
func ValidateEventName(eventName string) Result {
	sanitized := strings.TrimSpace(eventName)

	if sanitized == "" {
		sanitized = DefaultEventName
	}
	if len(sanitized) > MaxEventNameLength {
		return Result{Valid: false, Sanitized: sanitized, Error: fmt.Sprintf("event name is too long (max %d characters)", MaxEventNameLength)}
	}
	if !eventNameRe.MatchString(sanitized) {
		return Result{Valid: false, Sanitized: sanitized, Error: "invalid event name, use only letters, numbers, and underscore"}
	}

	return Result{Valid: true, Sanitized: sanitized}
}

// ValidateAllowListed keeps the subset of values present in allowed,
// preserving order and dropping duplicates. Disallowed values are silently
// dropped rather than rejected: multi-select fields are filtered, never
// failed.
func ValidateAllowListed(values []string, allowed []string) ListResult {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		allowedSet[v] = struct{}{}
	}

	seen := make(map[string]struct{}, len(values))
	sanitized := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := allowedSet[v]; !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		sanitized = append(sanitized, v)
	}

	return ListResult{Valid: true, Sanitized: sanitized}
}

// SanitizeForDisplay HTML-escapes a value for safe interpolation into markup.
func SanitizeForDisplay(output string) string {
	return html.EscapeString(output)
}

// SanitizeURL returns the escaped URL when it uses an allowed scheme,
// empty string otherwise.
func SanitizeURL(url string) string {
	if !safeURLRe.MatchString(url) {
		return ""
	}
	return html.EscapeString(url)
}

// stripTags removes every HTML tag except the inline formatting allow-list.
func stripTags(input string) string {
	return htmlTagRe.ReplaceAllStringFunc(input, func(tag string) string {
		if allowedTagRe.MatchString(tag) {
			return tag
		}
		return ""
	})
}

func removeXSSVectors(input string) string {
	input = scriptBlockRe.ReplaceAllString(input, "")
	input = styleBlockRe.ReplaceAllString(input, "")
	input = jsProtocolRe.ReplaceAllString(input, "")
	input = dataProtoRe.ReplaceAllString(input, "")
	input = vbsProtocolRe.ReplaceAllString(input, "")
	input = eventAttrRe.ReplaceAllString(input, "")
	return input
}
