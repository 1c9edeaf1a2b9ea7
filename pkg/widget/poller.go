package widget

import (
	"sync"
	"time"
)

// PollSchedule fixes the cadence of the readiness probe independently of
// the detection logic, so tests can shrink the intervals and the policy
// can be tuned without touching the state machine.
type PollSchedule struct {
	// InitialDelay is the one-shot first check shortly after creation.
	InitialDelay time.Duration
	// Interval is the recurring check period.
	Interval time.Duration
	// MaxAttempts bounds the recurring checks; after the cap the ticker
	// stops, but the initial check and navigation-triggered checks keep
	// working.
	MaxAttempts int
	// NavDebounce delays a navigation-triggered check to give the new
	// view a moment to start mounting.
	NavDebounce time.Duration
}

func DefaultPollSchedule() PollSchedule {
	return PollSchedule{
		InitialDelay: 1200 * time.Millisecond,
		Interval:     800 * time.Millisecond,
		MaxAttempts:  12,
		NavDebounce:  300 * time.Millisecond,
	}
}

// poller is a generic bounded-retry scheduler: it invokes fn on the
// schedule until stopped. It knows nothing about readiness; it only
// provides "first check after a delay, recurring checks up to a cap, and
// on-demand kicks".
type poller struct {
	sched    PollSchedule
	fn       func()
	done     chan struct{}
	kick     chan struct{}
	stopOnce sync.Once
}

func newPoller(sched PollSchedule, fn func()) *poller {
	return &poller{
		sched: sched,
		fn:    fn,
		done:  make(chan struct{}),
		kick:  make(chan struct{}, 1),
	}
}

func (p *poller) start() {
	go p.loop()
}

func (p *poller) loop() {
	initial := time.NewTimer(p.sched.InitialDelay)
	defer initial.Stop()
	ticker := time.NewTicker(p.sched.Interval)
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-p.done:
			return
		case <-initial.C:
			p.fn()
		case <-ticker.C:
			attempts++
			if attempts > p.sched.MaxAttempts {
				ticker.Stop()
				continue
			}
			p.fn()
		case <-p.kick:
			select {
			case <-time.After(p.sched.NavDebounce):
				p.fn()
			case <-p.done:
				return
			}
		}
	}
}

// kickSoon requests an out-of-band check after the debounce delay.
// Coalesces: a kick while one is pending is dropped.
func (p *poller) kickSoon() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// stop terminates the loop. Idempotent; pending checks are abandoned.
func (p *poller) stop() {
	p.stopOnce.Do(func() { close(p.done) })
}
