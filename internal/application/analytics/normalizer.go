package analytics

import (
	"sort"
	"strings"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// Rule is a dotted path into a decoded JSON document, e.g. "stats.gmv.amount".
type Rule string

// Lookup walks the path through nested objects. It reports false when any
// segment is missing or the final value is null.
func (r Rule) Lookup(doc any) (any, bool) {
	cur := doc
	for _, key := range strings.Split(string(r), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Rules holds the ordered lookup chain for every product attribute.
type Rules struct {
	Identity  []Rule
	Title     []Rule
	Image     []Rule
	Status    Rule
	Stock     []Rule
	GMV       []Rule
	ItemsSold []Rule
	Orders    []Rule
}

// DefaultRules checks the documented meta/stats shape first, then the older flat shapes.
func DefaultRules() Rules {
	return Rules{
		Identity: []Rule{
			"meta.product_id", "stats.product_id",
			"product_id", "id", "external_id",
			"product_info.product_id", "product_info.id",
			"base_info.product_id", "base_info.id",
		},
		Title: []Rule{"meta.product_name", "meta.title", "product_name", "title", "name"},
		Image: []Rule{
			"meta.product_image", "meta.image_url", "meta.image",
			"product_image", "image_url", "image.url",
		},
		Status: "meta.product_status",
		Stock: []Rule{
			"meta.inventory_cnt", "meta.stock", "meta.stock_quantity",
			"inventory_cnt", "stock", "stock_quantity",
		},
		GMV:       []Rule{"stats.gmv.amount", "stats.gmv", "stats.gmv_amount"},
		ItemsSold: []Rule{"stats.unit_sold_cnt", "stats.items_sold", "stats.quantity"},
		Orders:    []Rule{"stats.order_cnt", "stats.orders_count", "stats.order_count"},
	}
}

// listKeys are the container fields that may hold the product list, in priority order.
var listKeys = []string{"items", "product_list", "products", "list", "data"}

// probeKeys mark a list element as a product during the fallback scan.
var probeKeys = []string{"meta", "product_id", "id"}

// Normalizer extracts product records from one page of vendor payload.
type Normalizer struct {
	rules Rules
}

// NewNormalizer creates a normalizer with the given rules
func NewNormalizer(rules Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

// Items returns the product list of a page, or nil when none can be found.
func (n *Normalizer) Items(payload any) []any {
	container := payload
	if root, ok := payload.(map[string]any); ok {
		if data, ok := root["data"].(map[string]any); ok {
			container = data
		}
	}

	doc, isMap := container.(map[string]any)
	if isMap {
		for _, key := range listKeys {
			// an empty list here does not end discovery
			if list, ok := doc[key].([]any); ok && len(list) > 0 {
				return list
			}
		}
	}
	if list, ok := payload.([]any); ok {
		return list
	}
	if !isMap {
		return nil
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		list, ok := doc[k].([]any)
		if ok && looksLikeProductList(list) {
			return list
		}
	}
	return nil
}

func looksLikeProductList(list []any) bool {
	for _, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range probeKeys {
			if _, ok := m[k]; ok {
				return true
			}
		}
	}
	return false
}

// Normalize resolves one product entry. It returns domain.ErrExtractionMiss
// when no identity rule matches.
func (n *Normalizer) Normalize(item any) (domain.ProductRecord, error) {
	id := coerceString(firstScalar(item, n.rules.Identity))
	if id == "" {
		return domain.ProductRecord{}, domain.ErrExtractionMiss
	}
	return domain.ProductRecord{
		ExternalID:  id,
		Title:       coerceString(firstScalar(item, n.rules.Title)),
		ImageURL:    coerceString(firstScalar(item, n.rules.Image)),
		Status:      n.status(item),
		Stock:       coerceInt(firstScalar(item, n.rules.Stock)),
		GMV:         coerceDecimal(firstScalar(item, n.rules.GMV)),
		ItemsSold:   coerceInt(firstScalar(item, n.rules.ItemsSold)),
		OrdersCount: coerceInt(firstScalar(item, n.rules.Orders)),
	}, nil
}

var one = decimal.NewFromInt(1)

func (n *Normalizer) status(item any) domain.ProductStatus {
	v, ok := n.rules.Status.Lookup(item)
	if !ok {
		return domain.ProductStatusUnknown
	}
	if b, isBool := v.(bool); isBool && !b {
		return domain.ProductStatusUnknown
	}
	if isScalar(v) {
		if _, isString := v.(string); !isString && coerceDecimal(v).Equal(one) {
			return domain.ProductStatusLive
		}
	}
	return domain.ProductStatusHidden
}

// firstScalar returns the value of the first rule resolving to a scalar.
// Blank strings do not match, so the chain keeps looking.
func firstScalar(item any, rules []Rule) any {
	for _, r := range rules {
		v, ok := r.Lookup(item)
		if !ok || !isScalar(v) {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}
