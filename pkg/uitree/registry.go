package uitree

import "strings"

// Role identifies the capability class of a host control. The widget only
// ever looks for two kinds of controls, the generated table of the books
// list and its filter bar.
type Role string

const (
	RoleTable     Role = "table"
	RoleFilterBar Role = "filterbar"
)

// Control is the minimal surface every host control exposes. Controls are
// owned by the host shell; the widget holds them only for the duration of a
// single lookup and never caches them across checks.
type Control interface {
	ID() string
	Role() Role
}

// Registry is the live control tree. The tree mutates as views mount and
// unmount on client-side navigation, so iteration reflects whatever is
// currently rendered.
type Registry interface {
	Each(fn func(Control))
}

// Find scans the registry for a control of the given role whose ID contains
// every marker. It returns nil when nothing matches or the tree is not
// ready; lookup degrades to absence, it never fails. When several controls
// match, the last one seen wins.
func Find(reg Registry, role Role, markers ...string) Control {
	if reg == nil {
		return nil
	}
	var found Control
	reg.Each(func(c Control) {
		if c == nil || c.Role() != role {
			return
		}
		id := c.ID()
		for _, m := range markers {
			if !strings.Contains(id, m) {
				return
			}
		}
		found = c
	})
	return found
}

// RowBinding is the table's live connection between its displayed rows and
// the data query behind them. Filter replaces the current row filter
// wholesale; an empty or nil slice clears it so that every row is visible.
type RowBinding interface {
	Filter(filters []Filter)
}

// Table is a control that exposes its row binding. The binding may be nil
// while the table is still wiring itself up.
type Table interface {
	Control
	RowBinding() RowBinding
}

// Navigator exposes the host shell's client-side navigation: the current
// route and a hashchange-style notification. OnRouteChange returns a detach
// function that must be called when the listener's owner is destroyed.
type Navigator interface {
	CurrentRoute() string
	OnRouteChange(fn func()) (detach func())
}
