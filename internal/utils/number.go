package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts a whole response string to a finite number. Leading
// and trailing whitespace is ignored, decimals, exponents and 0x/0o/0b
// integer literals are accepted. Anything else, including "Infinity" and
// "NaN", is rejected. Locale separators ("1,5") are not handled.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}

	// ParseFloat also understands "inf", "nan", underscores and hex floats
	// which are not plain numeric answers.
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseLeadingInt reads the integer at the start of s, ignoring leading
// whitespace and whatever follows the digits: "3 - often" yields 3.
// A 0x prefix switches to hexadecimal.
func ParseLeadingInt(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < base {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], base, 64)
	if err != nil {
		// Too many digits for int64; fall back to float precision.
		f, ferr := strconv.ParseFloat(s[:end], 64)
		if ferr != nil || base != 10 {
			return 0, false
		}
		return sign * f, true
	}
	return sign * float64(n), true
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 99
	}
}

// ParseExpectedRange parses a "min-max" range such as "0-3". It reports
// false unless the string splits on '-' into exactly two numeric parts, so
// negative bounds cannot be expressed.
func ParseExpectedRange(expectedRange string) (min, max float64, ok bool) {
	parts := strings.Split(expectedRange, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}

	min, okMin := ParseNumber(parts[0])
	max, okMax := ParseNumber(parts[1])
	if !okMin || !okMax {
		return 0, 0, false
	}
	return min, max, true
}
