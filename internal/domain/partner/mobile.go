package partner

import "strings"

const mobileLength = 10

// NormalizeMobile reduces a free-form phone field to a 10-digit mobile number.
// It returns nil when no valid number can be recovered.
func NormalizeMobile(raw string) *string {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "", "-", "NA", "N/A":
		return nil
	}

	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	var out string
	switch n := len(digits); {
	case n == mobileLength:
		out = string(digits)
	case n == 11 && digits[0] == '0':
		out = string(digits[1:])
	case n == 12 && digits[0] == '9' && digits[1] == '1':
		out = string(digits[2:])
	case n > mobileLength:
		out = string(digits[n-mobileLength:])
	default:
		return nil
	}

	if len(out) != mobileLength {
		return nil
	}
	return &out
}
