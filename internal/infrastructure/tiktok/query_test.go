package tiktok

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryEncoder_Encode(t *testing.T) {
	enc := NewQueryEncoder(MsTokenKey)

	tests := []struct {
		name   string
		params []Param
		want   string
	}{
		{
			name:   "space encoded and msToken padding kept",
			params: []Param{{"a", "b c"}, {"msToken", "XYZ=="}},
			want:   "a=b%20c&msToken=XYZ==",
		},
		{
			name:   "padding encoded for other keys",
			params: []Param{{"token", "XYZ=="}},
			want:   "token=XYZ%3D%3D",
		},
		{
			name:   "inner equals of msToken encoded",
			params: []Param{{"msToken", "a=b="}},
			want:   "msToken=a%3Db=",
		},
		{
			name:   "nil values dropped",
			params: []Param{{"a", "1"}, {"b", nil}, {"c", "3"}},
			want:   "a=1&c=3",
		},
		{
			name:   "order preserved",
			params: []Param{{"z", "1"}, {"a", "2"}, {"m", "3"}},
			want:   "z=1&a=2&m=3",
		},
		{
			name:   "booleans and numbers",
			params: []Param{{"cookie_enabled", true}, {"screen_width", 1512}},
			want:   "cookie_enabled=true&screen_width=1512",
		},
		{
			name:   "unreserved marks untouched",
			params: []Param{{"v", "-_.!~*'()"}},
			want:   "v=-_.!~*'()",
		},
		{
			name:   "reserved characters upper-case escapes",
			params: []Param{{"v", "a/b?c&d=e+f;g,h:i@j#k$"}},
			want:   "v=a%2Fb%3Fc%26d%3De%2Bf%3Bg%2Ch%3Ai%40j%23k%24",
		},
		{
			name:   "utf-8 bytes",
			params: []Param{{"q", "é✓"}},
			want:   "q=%C3%A9%E2%9C%93",
		},
		{
			name:   "keys encoded",
			params: []Param{{"a b", "1"}},
			want:   "a%20b=1",
		},
		{
			name:   "empty",
			params: nil,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enc.Encode(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryEncoder_Duplicate(t *testing.T) {
	_, err := NewQueryEncoder().Encode([]Param{{"a", "1"}, {"a", "2"}})
	assert.ErrorIs(t, err, ErrDuplicateParam)
}

func TestQueryEncoder_Deterministic(t *testing.T) {
	enc := NewQueryEncoder(MsTokenKey)
	params := ProductListParams(DefaultConfig(), "7495", "verify_x", "tok==")
	first, err := enc.Encode(params)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := enc.Encode(params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeURIComponent(t *testing.T) {
	assert.Equal(t, "", EncodeURIComponent(""))
	assert.Equal(t, "abcXYZ019", EncodeURIComponent("abcXYZ019"))
	assert.Equal(t, "%20%22%25", EncodeURIComponent(` "%`))
}
