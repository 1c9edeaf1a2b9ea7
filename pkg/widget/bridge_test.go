package widget

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/bookworm/pkg/uitree"
)

// fakeRegistry is a mutable control tree for tests. Mutations may race
// with a monitor goroutine iterating it, hence the lock.
type fakeRegistry struct {
	mu       sync.Mutex
	controls []uitree.Control
}

func (r *fakeRegistry) Each(fn func(uitree.Control)) {
	r.mu.Lock()
	snapshot := make([]uitree.Control, len(r.controls))
	copy(snapshot, r.controls)
	r.mu.Unlock()
	for _, c := range snapshot {
		fn(c)
	}
}

func (r *fakeRegistry) add(c uitree.Control) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls = append(r.controls, c)
}

func (r *fakeRegistry) replace(controls []uitree.Control) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls = controls
}

type fakeControl struct {
	id   string
	role uitree.Role
}

func (c *fakeControl) ID() string        { return c.id }
func (c *fakeControl) Role() uitree.Role { return c.role }

// fakeBinding records every filter replacement it receives.
type fakeBinding struct {
	applied [][]uitree.Filter
}

func (b *fakeBinding) Filter(filters []uitree.Filter) {
	b.applied = append(b.applied, filters)
}

func (b *fakeBinding) last() []uitree.Filter {
	if len(b.applied) == 0 {
		return nil
	}
	return b.applied[len(b.applied)-1]
}

type fakeTable struct {
	fakeControl
	binding uitree.RowBinding
}

func (t *fakeTable) RowBinding() uitree.RowBinding { return t.binding }

func mountedRegistry() (*fakeRegistry, *fakeBinding) {
	binding := &fakeBinding{}
	reg := &fakeRegistry{}
	reg.add(&fakeTable{
		fakeControl: fakeControl{id: "app::BooksList--fe::table::Books::LineItem-Table", role: uitree.RoleTable},
		binding:     binding,
	})
	reg.add(&fakeControl{id: "app::BooksList--fe::FilterBar::Books", role: uitree.RoleFilterBar})
	return reg, binding
}

func TestApplyIDsUnavailableWhenTableMissing(t *testing.T) {
	b := NewBridge(&fakeRegistry{})
	assert.False(t, b.ApplyIDs([]string{"b1"}))
}

func TestApplyIDsUnavailableWhenBindingMissing(t *testing.T) {
	reg := &fakeRegistry{}
	reg.add(&fakeTable{
		fakeControl: fakeControl{id: "app::BooksList--Table", role: uitree.RoleTable},
		binding:     nil,
	})
	b := NewBridge(reg)
	assert.False(t, b.ApplyIDs([]string{"b1"}))
}

func TestApplyIDsIgnoresControlsMissingMarkers(t *testing.T) {
	binding := &fakeBinding{}
	reg := &fakeRegistry{}
	reg.add(&fakeTable{
		fakeControl: fakeControl{id: "app::OrdersList--Table", role: uitree.RoleTable},
		binding:     binding,
	})
	b := NewBridge(reg)
	assert.False(t, b.ApplyIDs([]string{"b1"}))
	assert.Empty(t, binding.applied)
}

// Clearing (nil) and "search found nothing" (empty) must yield two
// distinguishably different filter states: all rows vs no rows.
func TestApplyIDsDistinguishesClearFromNoMatches(t *testing.T) {
	reg, binding := mountedRegistry()
	b := NewBridge(reg)

	require.True(t, b.ApplyIDs(nil))
	cleared := binding.last()
	assert.Empty(t, cleared)

	require.True(t, b.ApplyIDs([]string{}))
	noRows := binding.last()
	require.Len(t, noRows, 1)
	assert.Equal(t, idField, noRows[0].Path)
	assert.Equal(t, matchNoneID, noRows[0].Value)

	// The match-none filter really matches nothing.
	assert.False(t, noRows[0].Matches(func(string) string { return "b1" }))
}

func TestApplyIDsBuildsDisjunctionOverIDs(t *testing.T) {
	reg, binding := mountedRegistry()
	b := NewBridge(reg)

	require.True(t, b.ApplyIDs([]string{"b1", "b2"}))
	installed := binding.last()
	require.Len(t, installed, 1)
	or := installed[0]
	require.Len(t, or.Filters, 2)
	assert.False(t, or.And)

	rowWithID := func(id string) func(string) string {
		return func(path string) string {
			if path == idField {
				return id
			}
			return ""
		}
	}
	assert.True(t, or.Matches(rowWithID("b1")))
	assert.True(t, or.Matches(rowWithID("b2")))
	assert.False(t, or.Matches(rowWithID("b3")))
}

func TestApplyIDsIsIdempotent(t *testing.T) {
	reg, binding := mountedRegistry()
	b := NewBridge(reg)

	require.True(t, b.ApplyIDs([]string{"b1", "b2"}))
	first := binding.last()
	require.True(t, b.ApplyIDs([]string{"b1", "b2"}))
	second := binding.last()

	assert.Equal(t, first, second)
	// Full replacement each time, never accumulation.
	require.Len(t, second, 1)
	assert.Len(t, second[0].Filters, 2)
}

func TestLocateFilterBar(t *testing.T) {
	reg, _ := mountedRegistry()
	b := NewBridge(reg)
	fb, ok := b.LocateFilterBar()
	require.True(t, ok)
	assert.Contains(t, fb.ID(), "FilterBar")

	none := NewBridge(&fakeRegistry{})
	_, ok = none.LocateFilterBar()
	assert.False(t, ok)
}
