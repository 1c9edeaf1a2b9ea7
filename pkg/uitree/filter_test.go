package uitree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type control struct {
	id   string
	role Role
}

func (c control) ID() string { return c.id }
func (c control) Role() Role { return c.role }

type sliceRegistry []Control

func (r sliceRegistry) Each(fn func(Control)) {
	for _, c := range r {
		fn(c)
	}
}

func TestFindMatchesRoleAndAllMarkers(t *testing.T) {
	reg := sliceRegistry{
		control{id: "app::OrdersList--Table", role: RoleTable},
		control{id: "app::BooksList--FilterBar", role: RoleFilterBar},
		control{id: "app::BooksList--innerTable", role: RoleTable},
	}

	found := Find(reg, RoleTable, "BooksList", "Table")
	require.NotNil(t, found)
	assert.Equal(t, "app::BooksList--innerTable", found.ID())

	assert.Nil(t, Find(reg, RoleTable, "BooksList", "Grid"))
	assert.Nil(t, Find(nil, RoleTable, "BooksList"))
}

func TestFilterMatchesLeafEquality(t *testing.T) {
	f := Equal("ID", "b1")
	assert.True(t, f.Matches(func(path string) string {
		require.Equal(t, "ID", path)
		return "b1"
	}))
	assert.False(t, f.Matches(func(string) string { return "b2" }))
}

func TestFilterMatchesDisjunction(t *testing.T) {
	f := AnyOf(Equal("ID", "b1"), Equal("ID", "b2"))
	row := func(id string) func(string) string {
		return func(string) string { return id }
	}
	assert.True(t, f.Matches(row("b1")))
	assert.True(t, f.Matches(row("b2")))
	assert.False(t, f.Matches(row("b3")))
}

func TestEmptyDisjunctionMatchesNothing(t *testing.T) {
	f := AnyOf()
	assert.False(t, f.Matches(func(string) string { return "anything" }))
}
