package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"currency string", "$1,962.29", "1962.29"},
		{"null", nil, "0"},
		{"units suffix", "7 units", "7"},
		{"negative", "-3.5", "-3.5"},
		{"json number", json.Number("12.75"), "12.75"},
		{"float", 19.99, "19.99"},
		{"int", 4, "4"},
		{"empty string", "", "0"},
		{"only symbols", "N/A", "0"},
		{"unparseable remainder", "1.2.3", "0"},
		{"bool", true, "0"},
		{"object", map[string]any{"amount": "1"}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceDecimal(tt.in).String())
		})
	}
}

func TestCoerceInt(t *testing.T) {
	assert.Equal(t, int64(7), coerceInt("7 units"))
	assert.Equal(t, int64(3), coerceInt(3.9))
	assert.Equal(t, int64(-2), coerceInt("-2.7"))
	assert.Equal(t, int64(1200), coerceInt("1,200"))
	assert.Equal(t, int64(0), coerceInt(nil))
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "abc", coerceString(" abc "))
	assert.Equal(t, "1729382256910000001", coerceString(json.Number("1729382256910000001")))
	assert.Equal(t, "1234567890123", coerceString(float64(1234567890123)))
	assert.Equal(t, "true", coerceString(true))
	assert.Equal(t, "", coerceString(nil))
	assert.Equal(t, "", coerceString(map[string]any{}))
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy(true))
	assert.True(t, isTruthy(json.Number("1")))
	assert.True(t, isTruthy("true"))
	assert.False(t, isTruthy(false))
	assert.False(t, isTruthy(json.Number("0")))
	assert.False(t, isTruthy("false"))
	assert.False(t, isTruthy(nil))
	assert.False(t, isTruthy(map[string]any{}))
}
