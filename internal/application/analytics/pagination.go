package analytics

// paginationMeta finds the pagination object under data.pagination, else pagination.
func paginationMeta(payload any) map[string]any {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	if data, ok := root["data"].(map[string]any); ok {
		if meta, ok := data["pagination"].(map[string]any); ok {
			return meta
		}
	}
	meta, _ := root["pagination"].(map[string]any)
	return meta
}

// hasNextPage decides whether to fetch requested+1. A truthy has_next or
// has_more wins; otherwise the reported current page is compared with the
// total page count.
func hasNextPage(payload any, requested int) bool {
	meta := paginationMeta(payload)
	for _, k := range []string{"has_next", "has_more"} {
		if isTruthy(meta[k]) {
			return true
		}
	}

	total := int64(1)
	for _, k := range []string{"total_page", "total_pages"} {
		if v, ok := meta[k]; ok && v != nil {
			total = coerceInt(v)
			break
		}
	}
	current := int64(requested)
	for _, k := range []string{"page", "current_page"} {
		if v, ok := meta[k]; ok && v != nil {
			current = coerceInt(v)
			break
		}
	}
	return current+1 < total
}
