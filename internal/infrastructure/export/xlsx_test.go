package export

import (
	"bytes"
	"testing"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readSheet(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return rows
}

func TestWriteProductAnalytics(t *testing.T) {
	rows := []domain.ProductAnalytics{
		{ExternalID: "1729", Title: "Glow Serum", Status: domain.ProductStatusLive, ImageURL: "https://img/1.png", GMV: decimal.RequireFromString("1962.29"), ItemsSold: 41, OrdersCount: 37},
		{ExternalID: "1730", Title: "Night Cream", Status: domain.ProductStatusHidden, GMV: decimal.RequireFromString("30"), ItemsSold: 3, OrdersCount: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProductAnalytics(&buf, rows))

	got := readSheet(t, &buf)
	require.Len(t, got, 3)
	assert.Equal(t, Header, got[0])
	assert.Equal(t, []string{"1729", "Glow Serum", "live", "https://img/1.png", "1962.29", "41", "37"}, got[1])
	assert.Equal(t, []string{"1730", "Night Cream", "hidden", "", "30", "3", "2"}, got[2])
}

func TestWriteProductAnalytics_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProductAnalytics(&buf, nil))

	got := readSheet(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, Header, got[0])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "product-analytics_s1_2025-06-01_2025-06-02.xlsx", FileName("s1", "2025-06-01", "2025-06-02"))
}
