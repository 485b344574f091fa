package analytics

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// coerceDecimal converts a loosely typed JSON value into a decimal.
// Native numbers pass through. Strings are stripped to digits, '.' and '-'
// before parsing. Anything else, or an unparseable remainder, is zero.
func coerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return decimal.NewFromInt(cast.ToInt64(n))
	case string:
		return parseLooseDecimal(n)
	default:
		return decimal.Zero
	}
}

// coerceInt converts a loosely typed JSON value into an integer,
// truncating fractional sources toward zero.
func coerceInt(v any) int64 {
	return coerceDecimal(v).IntPart()
}

func parseLooseDecimal(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}
	// no prefix salvage: "1.2.3" or "5-3" count as 0
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// coerceString renders a scalar as text. Floats keep their shortest exact form
// so large numeric ids never turn into exponent notation.
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case map[string]any, []any, nil:
		return ""
	default:
		return cast.ToString(s)
	}
}

// isScalar reports whether v can satisfy a scalar attribute rule.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, map[string]any, []any:
		return false
	}
	return true
}

// isTruthy follows the loose truthiness of the vendor flags:
// booleans as-is, numbers when nonzero, strings when they parse as true.
func isTruthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		ok, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && ok
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return !coerceDecimal(b).IsZero()
	}
	return false
}
