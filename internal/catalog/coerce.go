package catalog

import (
	"math"
	"strconv"
	"strings"
)

// ToFloat coerces a decoded JSON value to a float. Strings are parsed after
// trimming; anything that does not parse, including NaN and infinities, is
// reported as missing rather than zero.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isNumeric reports whether a value is already a number, without parsing strings.
func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	default:
		return false
	}
}

// toFlag maps a boolean-ish value to 0 or 1.
func toFlag(v any) int {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return 1
		default:
			return 0
		}
	default:
		if f, ok := ToFloat(x); ok && f != 0 {
			return 1
		}
		return 0
	}
}
