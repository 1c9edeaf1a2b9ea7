package bookshop

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/uitree"
)

const (
	HomeRoute  = "home"
	BooksRoute = "browse/books"
)

// ControlSet is the shell's mutable control registry. Controls come and go
// as routes mount and unmount.
type ControlSet struct {
	mu       sync.Mutex
	controls map[string]uitree.Control
}

func NewControlSet() *ControlSet {
	return &ControlSet{controls: map[string]uitree.Control{}}
}

func (s *ControlSet) Each(fn func(uitree.Control)) {
	s.mu.Lock()
	snapshot := make([]uitree.Control, 0, len(s.controls))
	for _, c := range s.controls {
		snapshot = append(snapshot, c)
	}
	s.mu.Unlock()
	for _, c := range snapshot {
		fn(c)
	}
}

func (s *ControlSet) Add(c uitree.Control) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls[c.ID()] = c
}

func (s *ControlSet) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controls, id)
}

// Shell simulates the single-page host application: a current route, a
// hashchange-style change signal, and asynchronous mounting of the books
// list view. The mount delay reproduces the window in which the route is
// active but the generated controls do not exist yet.
type Shell struct {
	registry   *ControlSet
	catalog    []Book
	mountDelay time.Duration
	logger     zerolog.Logger

	mu         sync.Mutex
	route      string
	view       *ListView
	mountTimer *time.Timer
	listeners  map[int]func()
	nextID     int
	closed     bool
}

func NewShell(catalog []Book, mountDelay time.Duration) *Shell {
	return &Shell{
		registry:   NewControlSet(),
		catalog:    catalog,
		mountDelay: mountDelay,
		logger:     log.With().Str("component", "shell").Logger(),
		route:      HomeRoute,
		listeners:  map[int]func(){},
	}
}

// Registry exposes the live control tree.
func (s *Shell) Registry() uitree.Registry { return s.registry }

// View returns the mounted list view, or nil off-route / while mounting.
func (s *Shell) View() *ListView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Shell) CurrentRoute() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.route
}

func (s *Shell) OnRouteChange(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Navigate changes the route, unmounts whatever the previous route had
// mounted and, for the books route, schedules the list view to mount after
// the configured delay.
func (s *Shell) Navigate(route string) {
	s.mu.Lock()
	if s.closed || route == s.route {
		s.mu.Unlock()
		return
	}
	s.route = route
	s.unmountLocked()
	if route == BooksRoute {
		s.logger.Debug().Dur("mount_delay", s.mountDelay).Msg("scheduling list view mount")
		s.mountTimer = time.AfterFunc(s.mountDelay, s.mount)
	}
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Shell) mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.route != BooksRoute || s.view != nil {
		return
	}
	s.view = NewListView(s.catalog)
	for _, c := range s.view.Controls() {
		s.registry.Add(c)
	}
	s.logger.Debug().Msg("list view mounted")
}

func (s *Shell) unmountLocked() {
	if s.mountTimer != nil {
		s.mountTimer.Stop()
		s.mountTimer = nil
	}
	if s.view == nil {
		return
	}
	for _, c := range s.view.Controls() {
		s.registry.Remove(c.ID())
	}
	s.view = nil
	s.logger.Debug().Msg("list view unmounted")
}

// Close stops any pending mount. Further Navigate calls are ignored.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.unmountLocked()
}
