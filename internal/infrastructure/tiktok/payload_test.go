package tiktok

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductListBody(t *testing.T) {
	start := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC)

	body := NewProductListBody(start, start, -28800, 2, 50, today)
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	// exact bytes: this string is what gets signed
	assert.Equal(t,
		`{"request":{"time_descriptor":{"start":"2025-02-28","end":"2025-03-01","timezone_offset":-28800},`+
			`"ccr_available_date":"2025-03-10","search":{"voc_statuses":[],"gmv_ranges":[]},"filter":{},`+
			`"list_control":{"rules":[{"direction":2,"field":"gmv"}],"pagination":{"size":50,"page":2}}}}`,
		string(raw))
}

func TestNewProductListBody_YearEnd(t *testing.T) {
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	body := NewProductListBody(end, end, 0, 0, 10, end)
	assert.Equal(t, "2025-01-01", body.Request.TimeDescriptor.End)
}
