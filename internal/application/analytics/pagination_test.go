package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasNextPage(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		requested int
		want      bool
	}{
		{"has_next true", `{"data":{"pagination":{"has_next":true}}}`, 0, true},
		{"has_more true", `{"data":{"pagination":{"has_more":true}}}`, 3, true},
		{"top-level pagination", `{"pagination":{"has_more":true}}`, 0, true},
		{"data.pagination wins", `{"data":{"pagination":{"total_page":1}},"pagination":{"has_next":true}}`, 0, false},
		{"has_next false falls back to totals", `{"data":{"pagination":{"has_next":false,"page":0,"total_page":3}}}`, 0, true},
		{"last page by total_page", `{"data":{"pagination":{"page":2,"total_page":3}}}`, 2, false},
		{"total_pages alias", `{"data":{"pagination":{"current_page":0,"total_pages":2}}}`, 0, true},
		{"defaults to requested page", `{"data":{"pagination":{"total_page":5}}}`, 3, true},
		{"defaults to requested page at end", `{"data":{"pagination":{"total_page":5}}}`, 4, false},
		{"no pagination means one page", `{"data":{"items":[{"id":"1"}]}}`, 0, false},
		{"string totals", `{"data":{"pagination":{"page":"0","total_page":"2"}}}`, 0, true},
		{"non-object payload", `[1,2]`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasNextPage(decodeJSON(t, tt.payload), tt.requested))
		})
	}
}
