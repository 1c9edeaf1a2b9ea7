package bookshop

import (
	"sync"

	"github.com/go-go-golems/bookworm/pkg/uitree"
)

// Control IDs follow the host framework's generated naming convention; the
// widget discovers them by marker substrings, never by exact ID.
const (
	tableControlID     = "bookshop::BooksList--fe::table::Books::LineItem-innerTable"
	filterBarControlID = "bookshop::BooksList--fe::FilterBar::Books"
)

// BooksBinding is the list view's row binding: the live connection between
// the catalog query and the displayed rows. Filters are applied as a full
// replacement; the slice is interpreted the way the host framework does,
// conjunctively across its top-level entries.
type BooksBinding struct {
	mu      sync.Mutex
	books   []Book
	filters []uitree.Filter
}

func (b *BooksBinding) Filter(filters []uitree.Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters = make([]uitree.Filter, len(filters))
	copy(b.filters, filters)
}

// VisibleRows evaluates the active filters against the bound catalog.
func (b *BooksBinding) VisibleRows() []Book {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Book, 0, len(b.books))
	for _, book := range b.books {
		visible := true
		for _, f := range b.filters {
			if !f.Matches(book.Field) {
				visible = false
				break
			}
		}
		if visible {
			out = append(out, book)
		}
	}
	return out
}

// BooksTable is the generated table control of the browse list.
type BooksTable struct {
	binding *BooksBinding
}

func (t *BooksTable) ID() string        { return tableControlID }
func (t *BooksTable) Role() uitree.Role { return uitree.RoleTable }

func (t *BooksTable) RowBinding() uitree.RowBinding {
	if t.binding == nil {
		return nil
	}
	return t.binding
}

// BooksFilterBar only exists to be found; nothing ever mutates it.
type BooksFilterBar struct{}

func (f *BooksFilterBar) ID() string        { return filterBarControlID }
func (f *BooksFilterBar) Role() uitree.Role { return uitree.RoleFilterBar }

// ListView bundles the controls the browse route mounts.
type ListView struct {
	Table     *BooksTable
	FilterBar *BooksFilterBar
	Binding   *BooksBinding
}

func NewListView(catalog []Book) *ListView {
	binding := &BooksBinding{books: catalog}
	return &ListView{
		Table:     &BooksTable{binding: binding},
		FilterBar: &BooksFilterBar{},
		Binding:   binding,
	}
}

func (v *ListView) Controls() []uitree.Control {
	return []uitree.Control{v.Table, v.FilterBar}
}
