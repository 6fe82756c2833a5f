package repository

// Query defaults. Limits above MaxLimit are clamped.
const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// QueryParams contains the filtering, sorting and pagination parameters of a
// query.
type QueryParams struct {
	// Where holds predicates; a resource must match all of them
	Where []string
	// Sort holds "<field path> [asc|desc]" expressions, applied in order
	Sort []string
	// Offset is the number of matching resources to skip (default 0)
	Offset *int
	// Limit is the maximum number of results (default 20)
	Limit *int
}

// IntParam is a helper for filling the optional QueryParams fields.
func IntParam(v int) *int {
	return &v
}

// resolvePage applies defaults and clamps offset and limit to valid values.
func resolvePage(p QueryParams, defaultLimit, maxLimit int) (offset, limit int) {
	limit = defaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	if limit < 0 {
		limit = 0
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	if p.Offset != nil {
		offset = *p.Offset
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// paginate returns the page of items starting at offset with at most limit
// entries.
func paginate[T any](items []T, offset, limit int) []T {
	total := len(items)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end]
}
