package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
)

// SortSpec is one compiled sort expression.
type SortSpec struct {
	Field string
	Desc  bool
	path  jp.Expr
}

// ParseSort compiles "<path> [asc|desc]" expressions. Blank entries are ignored.
func ParseSort(specs ...string) ([]SortSpec, error) {
	result := make([]SortSpec, 0, len(specs))
	for _, raw := range specs {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		if len(fields) > 2 {
			return nil, &Error{Param: "sort", Input: raw, Err: fmt.Errorf("expected '<field> [asc|desc]'")}
		}

		spec := SortSpec{Field: fields[0]}
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				spec.Desc = true
			default:
				return nil, &Error{Param: "sort", Input: raw, Err: fmt.Errorf("unknown direction %q", fields[1])}
			}
		}

		path := spec.Field
		if !strings.HasPrefix(path, "$") {
			path = "$." + path
		}
		x, err := jp.ParseString(path)
		if err != nil {
			return nil, &Error{Param: "sort", Input: raw, Err: err}
		}
		spec.path = x
		result = append(result, spec)
	}
	return result, nil
}

// Value returns the value doc is sorted by, or nil if the path is absent.
func (s SortSpec) Value(doc map[string]any) any {
	if s.path == nil {
		return nil
	}
	return s.path.First(doc)
}

// Compare orders two documents by the given specs, returning -1, 0 or 1.
func Compare(specs []SortSpec, a, b map[string]any) int {
	for _, s := range specs {
		c := CompareValues(s.Value(a), s.Value(b))
		if s.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// CompareValues compares two JSON values for sorting.
// Handles strings (RFC 3339 timestamps are compared as times), numbers and
// booleans; nil sorts first. Falls back to string comparison for mixed or
// unknown types.
func CompareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			if ta, errA := time.Parse(time.RFC3339Nano, va); errA == nil {
				if tb, errB := time.Parse(time.RFC3339Nano, vb); errB == nil {
					return ta.Compare(tb)
				}
			}
			return strings.Compare(va, vb)
		}
	case float64:
		if vb, ok := b.(float64); ok {
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		}
	case int:
		if vb, ok := b.(int); ok {
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			}
			return 1
		}
	}

	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}
