// Package messaging builds customer-facing WhatsApp links and talks to the
// WhatsApp Cloud API.
package messaging

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/sanctified-studios/studio/internal/shared"
)

// DefaultCountryCode is used when a number is entered without one.
const DefaultCountryCode = "91"

// NormalizePhone turns an operator-typed number into E.164 ("+919876543210").
//
// Non-digits are dropped. Ten digits get the default country code; a leading trunk
// zero before ten digits is replaced by it. Anything else must already be a full
// international number of 11 to 15 digits.
func NormalizePhone(raw, defaultCountry string) (string, error) {
	if defaultCountry == "" {
		defaultCountry = DefaultCountryCode
	}
	digits := Digits(raw)
	switch {
	case digits == "":
		return "", shared.ValidationError{Field: "phone", Msg: "required"}
	case len(digits) == 10:
		digits = defaultCountry + digits
	case len(digits) == 11 && digits[0] == '0':
		digits = defaultCountry + digits[1:]
	case len(digits) < 11 || len(digits) > 15:
		return "", shared.ValidationError{Field: "phone", Msg: "must be a 10 digit local number or a full international number"}
	}
	if digits[0] == '0' {
		return "", shared.ValidationError{Field: "phone", Msg: "country code cannot start with 0"}
	}
	return "+" + digits, nil
}

// Digits strips everything except ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ChatLink opens a WhatsApp chat with text pre-filled. It only hints the operator's
// device; nothing is delivered until they press send. Spaces are sent as %20
// because not every WhatsApp client turns "+" back into a space.
func ChatLink(phone, text string) string {
	return "https://wa.me/" + Digits(phone) + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
