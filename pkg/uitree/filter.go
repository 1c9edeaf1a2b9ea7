package uitree

// Operator is a filter comparison operator. Only equality is needed by the
// widget; the type exists so the host binding can grow richer predicates
// without changing the wire between the two.
type Operator string

const OpEQ Operator = "EQ"

// Filter mirrors the host framework's composite filter value: either a leaf
// comparison against a single field, or a boolean combination of
// sub-filters. A leaf has Path set and Filters empty; a composite has
// Filters set and ignores Path.
type Filter struct {
	Path    string
	Op      Operator
	Value   string
	Filters []Filter
	And     bool
}

// Equal builds a leaf equality filter.
func Equal(path, value string) Filter {
	return Filter{Path: path, Op: OpEQ, Value: value}
}

// AnyOf combines filters disjunctively.
func AnyOf(filters ...Filter) Filter {
	return Filter{Filters: filters, And: false}
}

// Matches evaluates the filter against a row viewed as a field lookup. An
// AND composite with no children matches everything, an OR composite with
// no children matches nothing.
func (f Filter) Matches(get func(path string) string) bool {
	if len(f.Filters) > 0 || f.Path == "" {
		for _, sub := range f.Filters {
			ok := sub.Matches(get)
			if f.And && !ok {
				return false
			}
			if !f.And && ok {
				return true
			}
		}
		return f.And
	}
	switch f.Op {
	case OpEQ:
		return get(f.Path) == f.Value
	default:
		return false
	}
}
