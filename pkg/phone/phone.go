// Package phone normalizes free-form dial strings to E.164.
//
// Only the two countries the desk actually dials are supported: India (+91)
// and US/Canada (+1). This is a dialing heuristic, not a validation of
// real-world reachability.
package phone

import (
	"strings"

	apperrors "github.com/envisage-infotech/hr-interview-desk/errors"
)

// Normalize converts a free-form phone number to +1/+91 E.164 form.
//
// Rules, in order:
//  1. strip every non-digit character
//  2. 12 digits starting "91"  -> already carries the India code, prefix "+"
//  3. 11 digits starting "1"   -> already carries the US/Canada code, prefix "+"
//  4. exactly 10 digits        -> infer the country from the leading digit:
//     6-9 means an Indian mobile number, anything else defaults to US/Canada
//  5. anything else is rejected; no call is placed for a rejected number
func Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits, nil
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, nil
	case len(digits) == 10:
		switch digits[0] {
		case '6', '7', '8', '9':
			return "+91" + digits, nil
		default:
			return "+1" + digits, nil
		}
	default:
		return "", apperrors.ErrInvalidPhoneNumber(raw)
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
