package analytics

import (
	"testing"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Product list extraction
// ---------------------------------------------------------------------------

func TestNormalizer_Items(t *testing.T) {
	n := NewNormalizer(DefaultRules())

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"data.items", `{"code":0,"data":{"items":[{"id":"1"},{"id":"2"}]}}`, 2},
		{"data.product_list", `{"data":{"product_list":[{"id":"1"}]}}`, 1},
		{"items preferred over products", `{"data":{"products":[{"id":"1"},{"id":"2"}],"items":[{"id":"3"}]}}`, 1},
		{"top-level list field without data", `{"list":[{"id":"1"}]}`, 1},
		{"data is a list", `{"data":[{"id":"1"},{"id":"2"},{"id":"3"}]}`, 3},
		{"payload is a list", `[{"id":"1"}]`, 1},
		{"fallback scan", `{"data":{"total":1,"segments":[{"meta":{"product_id":"9"}}]}}`, 1},
		{"fallback skips foreign lists", `{"data":{"tags":["a","b"]}}`, 0},
		{"empty items", `{"data":{"items":[]}}`, 0},
		{"empty items falls through to products", `{"data":{"items":[],"products":[{"id":"1"}]}}`, 1},
		{"empty items falls through to scan", `{"data":{"items":[],"rows":[{"meta":{"product_id":"9"}}]}}`, 1},
		{"scalar payload", `"nope"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, n.Items(decodeJSON(t, tt.payload)), tt.want)
		})
	}
}

func TestNormalizer_Items_FallbackIsDeterministic(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	payload := decodeJSON(t, `{"data":{"zeta":[{"id":"z"}],"alpha":[{"id":"a"}]}}`)

	for i := 0; i < 20; i++ {
		items := n.Items(payload)
		require.Len(t, items, 1)
		rec, err := n.Normalize(items[0])
		require.NoError(t, err)
		assert.Equal(t, "a", rec.ExternalID)
	}
}

// ---------------------------------------------------------------------------
// Attribute resolution
// ---------------------------------------------------------------------------

func TestNormalizer_Normalize_MetaStatsShape(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	item := decodeJSON(t, `{
		"meta": {
			"product_id": "1729382256910000001",
			"product_name": "Ceramic Mug",
			"product_image": "https://cdn.example.com/mug.png",
			"product_status": 1,
			"inventory_cnt": 42
		},
		"stats": {
			"gmv": {"amount": "$1,962.29", "currency": "USD"},
			"unit_sold_cnt": "7 units",
			"order_cnt": 5
		}
	}`)

	rec, err := n.Normalize(item)
	require.NoError(t, err)
	assert.Equal(t, "1729382256910000001", rec.ExternalID)
	assert.Equal(t, "Ceramic Mug", rec.Title)
	assert.Equal(t, "https://cdn.example.com/mug.png", rec.ImageURL)
	assert.Equal(t, domain.ProductStatusLive, rec.Status)
	assert.Equal(t, int64(42), rec.Stock)
	assert.Equal(t, "1962.29", rec.GMV.String())
	assert.Equal(t, int64(7), rec.ItemsSold)
	assert.Equal(t, int64(5), rec.OrdersCount)
}

func TestNormalizer_Normalize_FlatShape(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	item := decodeJSON(t, `{
		"product_id": 1234567890123,
		"title": "Flat Item",
		"image": {"url": "https://cdn.example.com/flat.png"},
		"stock_quantity": "12",
		"stats": {"gmv_amount": 10.5, "items_sold": 2, "orders_count": 1}
	}`)

	rec, err := n.Normalize(item)
	require.NoError(t, err)
	assert.Equal(t, "1234567890123", rec.ExternalID)
	assert.Equal(t, "Flat Item", rec.Title)
	assert.Equal(t, "https://cdn.example.com/flat.png", rec.ImageURL)
	assert.Equal(t, domain.ProductStatusUnknown, rec.Status)
	assert.Equal(t, int64(12), rec.Stock)
	assert.Equal(t, "10.5", rec.GMV.String())
	assert.Equal(t, int64(2), rec.ItemsSold)
	assert.Equal(t, int64(1), rec.OrdersCount)
}

func TestNormalizer_Normalize_IdentityChain(t *testing.T) {
	n := NewNormalizer(DefaultRules())

	tests := []struct {
		name string
		item string
		want string
	}{
		{"meta first", `{"meta":{"product_id":"m"},"stats":{"product_id":"s"},"id":"i"}`, "m"},
		{"stats second", `{"meta":{},"stats":{"product_id":"s"},"id":"i"}`, "s"},
		{"top-level id", `{"id":"i","external_id":"e"}`, "i"},
		{"external_id", `{"external_id":"e"}`, "e"},
		{"product_info", `{"product_info":{"id":"pi"}}`, "pi"},
		{"base_info", `{"base_info":{"product_id":"bi"}}`, "bi"},
		{"null skipped", `{"meta":{"product_id":null},"product_id":"p"}`, "p"},
		{"blank skipped", `{"meta":{"product_id":"  "},"id":"i"}`, "i"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Normalize(decodeJSON(t, tt.item))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ExternalID)
		})
	}
}

func TestNormalizer_Normalize_MissingIdentity(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	_, err := n.Normalize(decodeJSON(t, `{"meta":{"product_name":"No ID"},"stats":{"gmv":"1.00"}}`))
	assert.ErrorIs(t, err, domain.ErrExtractionMiss)

	_, err = n.Normalize("not an object")
	assert.ErrorIs(t, err, domain.ErrExtractionMiss)
}

func TestNormalizer_Normalize_GMVChain(t *testing.T) {
	n := NewNormalizer(DefaultRules())

	tests := []struct {
		name string
		item string
		want string
	}{
		{"nested amount", `{"id":"1","stats":{"gmv":{"amount":"25.10"}}}`, "25.1"},
		{"object without amount falls through", `{"id":"1","stats":{"gmv":{"currency":"USD"},"gmv_amount":"3.50"}}`, "3.5"},
		{"scalar gmv", `{"id":"1","stats":{"gmv":"$1,962.29"}}`, "1962.29"},
		{"null gmv", `{"id":"1","stats":{"gmv":null}}`, "0"},
		{"missing stats", `{"id":"1"}`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Normalize(decodeJSON(t, tt.item))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.GMV.String())
		})
	}
}

func TestNormalizer_Normalize_Status(t *testing.T) {
	n := NewNormalizer(DefaultRules())

	tests := []struct {
		name string
		item string
		want domain.ProductStatus
	}{
		{"one is live", `{"id":"1","meta":{"product_status":1}}`, domain.ProductStatusLive},
		{"two is hidden", `{"id":"1","meta":{"product_status":2}}`, domain.ProductStatusHidden},
		{"zero is hidden", `{"id":"1","meta":{"product_status":0}}`, domain.ProductStatusHidden},
		{"string is hidden", `{"id":"1","meta":{"product_status":"active"}}`, domain.ProductStatusHidden},
		{"absent is unknown", `{"id":"1","meta":{}}`, domain.ProductStatusUnknown},
		{"null is unknown", `{"id":"1","meta":{"product_status":null}}`, domain.ProductStatusUnknown},
		{"false is unknown", `{"id":"1","meta":{"product_status":false}}`, domain.ProductStatusUnknown},
		{"top-level status ignored", `{"id":"1","product_status":1}`, domain.ProductStatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := n.Normalize(decodeJSON(t, tt.item))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Status)
		})
	}
}

func TestNormalizer_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.Identity = append([]Rule{"sku.code"}, rules.Identity...)
	n := NewNormalizer(rules)

	rec, err := n.Normalize(decodeJSON(t, `{"sku":{"code":"SKU-9"},"id":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, "SKU-9", rec.ExternalID)
}

func TestRule_Lookup(t *testing.T) {
	doc := decodeJSON(t, `{"a":{"b":{"c":3}},"n":null}`)

	v, ok := Rule("a.b.c").Lookup(doc)
	assert.True(t, ok)
	assert.Equal(t, "3", coerceString(v))

	_, ok = Rule("a.x.c").Lookup(doc)
	assert.False(t, ok)
	_, ok = Rule("n").Lookup(doc)
	assert.False(t, ok)
	_, ok = Rule("a.b.c.d").Lookup(doc)
	assert.False(t, ok)
}
