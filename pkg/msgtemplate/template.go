// Package msgtemplate renders outbound message templates. Tokens are
// {name}-bracketed placeholders; anything bracket-shaped that is not a
// known token is removed before the message reaches the URL encoder.
package msgtemplate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaxMessageLength bounds the rendered message.
const MaxMessageLength = 1000

// GeneralTokens are available in every page context.
var GeneralTokens = []string{"{page_url}", "{shop_name}", "{currency}"}

// ProductTokens are available only when a product snapshot is supplied.
var ProductTokens = []string{"{product_name}", "{product_ref}", "{price}", "{product_url}"}

var (
	tokenRe      = regexp.MustCompile(`\{[^}]+\}`)
	htmlTagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ProductValues carries the resolved product token values. Price arrives
// already currency-formatted by the caller.
type ProductValues struct {
	Name      string
	Reference string
	Price     string
	URL       string
}

// TokenValues carries every resolvable token value for one render.
type TokenValues struct {
	PageURL  string
	ShopName string
	Currency string
	Product  *ProductValues
}

// AvailableTokens lists the tokens an author may use.
func AvailableTokens(allowProduct bool) []string {
	tokens := make([]string, 0, len(GeneralTokens)+len(ProductTokens))
	tokens = append(tokens, GeneralTokens...)
	if allowProduct {
		tokens = append(tokens, ProductTokens...)
	}
	return tokens
}

// Render substitutes token values into template, deletes any leftover
// bracket content, strips HTML, normalizes whitespace and truncates to
// MaxMessageLength.
func Render(template string, values TokenValues) string {
	message := template

	message = strings.ReplaceAll(message, "{page_url}", values.PageURL)
	message = strings.ReplaceAll(message, "{shop_name}", values.ShopName)
	message = strings.ReplaceAll(message, "{currency}", values.Currency)

	if values.Product != nil {
		message = strings.ReplaceAll(message, "{product_name}", values.Product.Name)
		message = strings.ReplaceAll(message, "{product_ref}", values.Product.Reference)
		message = strings.ReplaceAll(message, "{price}", values.Product.Price)
		message = strings.ReplaceAll(message, "{product_url}", values.Product.URL)
	} else {
		for _, token := range ProductTokens {
			message = strings.ReplaceAll(message, token, "")
		}
	}

	message = RemoveUnknownTokens(message, values.Product != nil)

	return SanitizeMessage(message)
}

// RemoveUnknownTokens deletes every bracket-shaped token outside the
// allowed set. Render-time degradation stays silent; rejection happens at
// authoring time via ValidateTokens.
func RemoveUnknownTokens(message string, allowProduct bool) string {
	allowed := allowedSet(allowProduct)
	return tokenRe.ReplaceAllStringFunc(message, func(token string) string {
		if _, ok := allowed[token]; ok {
			return token
		}
		return ""
	})
}

// SanitizeMessage strips HTML, collapses whitespace and enforces the
// length bound. Truncation replaces the final three characters with "...".
func SanitizeMessage(message string) string {
	message = htmlTagRe.ReplaceAllString(message, "")
	message = whitespaceRe.ReplaceAllString(message, " ")
	message = strings.TrimSpace(message)

	if len(message) > MaxMessageLength {
		message = message[:MaxMessageLength-3] + "..."
	}
	return message
}

// ValidateTokens rejects the whole template when any bracket-shaped token
// is outside the allowed set. Stricter than render-time stripping on
// purpose: reject at authoring time, degrade gracefully at render time.
func ValidateTokens(template string, allowProduct bool) error {
	allowed := allowedSet(allowProduct)
	for _, token := range tokenRe.FindAllString(template, -1) {
		if _, ok := allowed[token]; !ok {
			return fmt.Errorf("invalid token: %s", token)
		}
	}
	return nil
}

// EncodeForURL percent-encodes a rendered message for the ?text= parameter.
func EncodeForURL(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

func allowedSet(allowProduct bool) map[string]struct{} {
	set := make(map[string]struct{}, len(GeneralTokens)+len(ProductTokens))
	for _, t := range GeneralTokens {
		set[t] = struct{}{}
	}
	if allowProduct {
		for _, t := range ProductTokens {
			set[t] = struct{}{}
		}
	}
	return set
}
