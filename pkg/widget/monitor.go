package widget

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/uitree"
)

// DefaultReadinessTimeout bounds how long the monitor reports Waiting
// before failing open.
const DefaultReadinessTimeout = 10 * time.Second

// DefaultTargetRoute is the route fragment of the generated books list.
const DefaultTargetRoute = "browse/books"

// MonitorConfig wires a Monitor to the host shell.
type MonitorConfig struct {
	Navigator   uitree.Navigator
	Bridge      *Bridge
	TargetRoute string
	Schedule    PollSchedule
	Timeout     time.Duration
	// OnState receives every recomputed state. Called from the monitor's
	// own goroutine; receivers must be safe for that.
	OnState func(State)
	// Now is overridable for tests.
	Now func() time.Time
}

// Monitor answers "should the chat affordance be visible and usable right
// now?" by probing the live control tree on a bounded schedule and on
// navigation events. Every probe recomputes the full state from scratch;
// the only memory between probes is the wait-start timestamp.
type Monitor struct {
	cfg       MonitorConfig
	poller    *poller
	detachNav func()
	logger    zerolog.Logger

	mu        sync.Mutex
	waitStart time.Time
	started   bool
}

func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultReadinessTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Schedule == (PollSchedule{}) {
		cfg.Schedule = DefaultPollSchedule()
	}
	if cfg.TargetRoute == "" {
		cfg.TargetRoute = DefaultTargetRoute
	}
	m := &Monitor{
		cfg:    cfg,
		logger: log.With().Str("component", "readiness-monitor").Logger(),
	}
	m.poller = newPoller(cfg.Schedule, m.Check)
	return m
}

// Start begins polling and attaches the navigation listener. Calling Start
// twice is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	if m.cfg.Navigator != nil {
		m.detachNav = m.cfg.Navigator.OnRouteChange(m.poller.kickSoon)
	}
	m.poller.start()
}

// Stop halts the recurring timer and detaches the navigation listener.
// Idempotent.
func (m *Monitor) Stop() {
	m.poller.stop()
	if m.detachNav != nil {
		m.detachNav()
		m.detachNav = nil
	}
}

// Check probes the tree once and reports the recomputed state. Safe to call
// concurrently with the scheduled probes: recomputation is stateless, so
// interleavings only race on which valid snapshot is reported last.
func (m *Monitor) Check() {
	snap := m.snapshot()
	now := m.cfg.Now()

	m.mu.Lock()
	switch {
	case !snap.OnTargetRoute:
		m.waitStart = time.Time{}
	case m.waitStart.IsZero():
		m.waitStart = now
	}
	waitStart := m.waitStart
	m.mu.Unlock()

	st := Compute(snap, now, waitStart, m.cfg.Timeout)
	if st.WaitedTooLong {
		m.logger.Debug().
			Dur("timeout", m.cfg.Timeout).
			Msg("controls never mounted, failing open")
	}
	if m.cfg.OnState != nil {
		m.cfg.OnState(st)
	}
}

func (m *Monitor) snapshot() Snapshot {
	snap := Snapshot{}
	if m.cfg.Navigator != nil {
		snap.OnTargetRoute = strings.Contains(m.cfg.Navigator.CurrentRoute(), m.cfg.TargetRoute)
	}
	if m.cfg.Bridge != nil {
		_, snap.TableFound = m.cfg.Bridge.LocateTable()
		_, snap.FilterBarFound = m.cfg.Bridge.LocateFilterBar()
	}
	return snap
}
