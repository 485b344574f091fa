package tiktok

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ErrDuplicateParam is returned when a query key appears twice
var ErrDuplicateParam = errors.New("tiktok: duplicate query parameter")

// MsTokenKey is the query key whose base64 padding is kept verbatim
const MsTokenKey = "msToken"

// Param is one ordered query entry. A nil Value drops the entry.
type Param struct {
	Key   string
	Value any
}

// QueryEncoder renders the canonical query string fed to the signers.
// Order is preserved exactly as given.
type QueryEncoder struct {
	preservePadding map[string]bool
}

// NewQueryEncoder creates an encoder that keeps trailing '=' runs for the given keys
func NewQueryEncoder(preservePaddingKeys ...string) *QueryEncoder {
	keys := make(map[string]bool, len(preservePaddingKeys))
	for _, k := range preservePaddingKeys {
		keys[k] = true
	}
	return &QueryEncoder{preservePadding: keys}
}

// Encode joins key=value pairs with '&'.
func (e *QueryEncoder) Encode(params []Param) (string, error) {
	seen := make(map[string]bool, len(params))
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Value == nil {
			continue
		}
		if seen[p.Key] {
			return "", fmt.Errorf("%w: %s", ErrDuplicateParam, p.Key)
		}
		seen[p.Key] = true

		value := cast.ToString(p.Value)
		padding := ""
		if e.preservePadding[p.Key] {
			trimmed := strings.TrimRight(value, "=")
			padding = value[len(trimmed):]
			value = trimmed
		}
		parts = append(parts, EncodeURIComponent(p.Key)+"="+EncodeURIComponent(value)+padding)
	}
	return strings.Join(parts, "&"), nil
}

const upperHex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s like JavaScript's encodeURIComponent,
// leaving A-Z a-z 0-9 - _ . ! ~ * ' ( ) untouched.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
