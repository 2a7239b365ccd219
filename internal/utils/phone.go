package utils

import (
	"strings"
	"unicode"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/width"
)

// mobilePrefixes are the Korean mobile carrier prefixes accepted for SMS dispatch.
var mobilePrefixes = []string{"010", "011", "016", "017", "018", "019"}

// PhoneComponents represents a parsed Korean mobile number
type PhoneComponents struct {
	Local  string `json:"local"`
	Prefix string `json:"prefix"`
	E164   string `json:"e164"`
}

// NormalizeDigits narrows full-width characters and strips everything that is not a digit,
// so "010-1234-5678", "010 1234 5678" and "０１０１２３４５６７８" share one key.
func NormalizeDigits(phone string) string {
	narrow := width.Narrow.String(phone)
	var b strings.Builder
	b.Grow(len(narrow))
	for _, r := range narrow {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToLocal converts an 82-prefixed international number to the domestic 0-prefixed form.
// Other inputs are returned digits-only.
func ToLocal(phone string) string {
	digits := NormalizeDigits(phone)
	if strings.HasPrefix(digits, "82") && len(digits) >= 11 && len(digits) <= 13 {
		rest := strings.TrimPrefix(digits[2:], "0")
		return "0" + rest
	}
	return digits
}

// ParseKoreanMobile validates a Korean mobile number and returns its components.
func ParseKoreanMobile(phone string) (*PhoneComponents, error) {
	local := ToLocal(phone)
	if local == "" {
		return nil, models.NewValidationError("phone", "phone number is required")
	}
	if len(local) < 10 || len(local) > 11 {
		return nil, models.NewValidationError("phone", "invalid phone number length: %d digits", len(local))
	}

	prefix := ""
	for _, p := range mobilePrefixes {
		if strings.HasPrefix(local, p) {
			prefix = p
			break
		}
	}
	if prefix == "" {
		return nil, models.NewValidationError("phone", "not a Korean mobile number")
	}
	// 010 numbers always carry eight subscriber digits.
	if prefix == "010" && len(local) != 11 {
		return nil, models.NewValidationError("phone", "010 numbers must have 11 digits")
	}

	components := &PhoneComponents{Local: local, Prefix: prefix}
	if num, err := phonenumbers.Parse(local, "KR"); err == nil {
		components.E164 = phonenumbers.Format(num, phonenumbers.E164)
	} else {
		components.E164 = "+82" + local[1:]
	}
	return components, nil
}
