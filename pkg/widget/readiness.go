package widget

import "time"

// Phase classifies whether the chat affordance should be visible and
// usable right now.
type Phase int

const (
	// PhaseNotOnTarget: the current route is not the books list. Toggle
	// hidden, panel forced closed.
	PhaseNotOnTarget Phase = iota
	// PhaseWaiting: on the target route, but the table and/or filter bar
	// have not mounted yet. Toggle shown but marked busy-looking.
	PhaseWaiting
	// PhaseReady: both controls found, or we waited long enough that
	// hiding the affordance forever would be worse than showing it.
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseNotOnTarget:
		return "not-on-target"
	case PhaseWaiting:
		return "waiting"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Snapshot is what a single readiness probe observed in the live UI tree
// and the navigation location.
type Snapshot struct {
	OnTargetRoute  bool
	TableFound     bool
	FilterBarFound bool
}

// State is the derived readiness result. It is recomputed from scratch on
// every probe and never persisted.
type State struct {
	Phase Phase
	// WaitedTooLong marks a Ready that was forced by the bounded-wait
	// policy rather than by actually finding the controls. Fail open: a
	// permanently hidden affordance is a worse failure mode than an
	// occasionally premature one.
	WaitedTooLong bool
}

// Compute is the stateless readiness transition. waitStart is the moment
// the monitor entered the waiting phase; the zero time means waiting has
// not started.
func Compute(snap Snapshot, now time.Time, waitStart time.Time, timeout time.Duration) State {
	if !snap.OnTargetRoute {
		return State{Phase: PhaseNotOnTarget}
	}
	if snap.TableFound && snap.FilterBarFound {
		return State{Phase: PhaseReady}
	}
	if !waitStart.IsZero() && now.Sub(waitStart) >= timeout {
		return State{Phase: PhaseReady, WaitedTooLong: true}
	}
	return State{Phase: PhaseWaiting}
}
