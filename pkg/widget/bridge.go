package widget

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/uitree"
)

const (
	listMarker      = "BooksList"
	tableMarker     = "Table"
	filterBarMarker = "FilterBar"

	// idField is the key the table's rows are filtered on.
	idField = "ID"

	// matchNoneID cannot occur as a real book identifier; an equality
	// filter against it is guaranteed to match no row.
	matchNoneID = "$none"
)

// Bridge locates the host list's generated controls and translates
// identifier lists into the table's native filter predicate. Every
// application is a full replacement of the current filter, never a delta,
// so repeated application of the same list is idempotent.
type Bridge struct {
	reg    uitree.Registry
	logger zerolog.Logger
}

func NewBridge(reg uitree.Registry) *Bridge {
	return &Bridge{
		reg:    reg,
		logger: log.With().Str("component", "filter-bridge").Logger(),
	}
}

// LocateTable finds the books list's generated table by naming convention.
// Absent is a normal outcome while the view is still mounting.
func (b *Bridge) LocateTable() (uitree.Table, bool) {
	c := uitree.Find(b.reg, uitree.RoleTable, listMarker, tableMarker)
	if c == nil {
		return nil, false
	}
	t, ok := c.(uitree.Table)
	return t, ok
}

// LocateFilterBar finds the list's filter bar. Used for readiness detection
// only; the widget never mutates it.
func (b *Bridge) LocateFilterBar() (uitree.Control, bool) {
	c := uitree.Find(b.reg, uitree.RoleFilterBar, listMarker, filterBarMarker)
	return c, c != nil
}

// ApplyIDs installs a row filter derived from a content-search result:
//
//   - nil means "no search constraint": the filter is cleared and every row
//     becomes visible;
//   - an empty non-nil list means "a search ran and matched nothing": a
//     guaranteed-no-match filter is installed so that no row is visible;
//   - otherwise an OR-of-equality filter over the ID field replaces
//     whatever filter was active before.
//
// Returns false without mutating anything when the table or its row binding
// cannot be obtained; callers must treat that as "filtering unavailable",
// not as "zero results".
func (b *Bridge) ApplyIDs(ids []string) bool {
	t, ok := b.LocateTable()
	if !ok {
		b.logger.Debug().Msg("books table not found, cannot apply filter")
		return false
	}
	binding := t.RowBinding()
	if binding == nil {
		b.logger.Debug().Str("table_id", t.ID()).Msg("table has no row binding yet")
		return false
	}

	switch {
	case ids == nil:
		binding.Filter(nil)
		b.logger.Debug().Msg("cleared row filter")
	case len(ids) == 0:
		binding.Filter([]uitree.Filter{uitree.Equal(idField, matchNoneID)})
		b.logger.Debug().Msg("search matched nothing, installed match-none filter")
	default:
		ors := make([]uitree.Filter, 0, len(ids))
		for _, id := range ids {
			ors = append(ors, uitree.Equal(idField, id))
		}
		binding.Filter([]uitree.Filter{uitree.AnyOf(ors...)})
		b.logger.Debug().Int("ids", len(ids)).Msg("installed identifier filter")
	}
	return true
}
