package bookshop

import (
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/conversation"
)

// SurfaceEvent is one render instruction emitted by the widget. The TUI
// model drains these from its update loop.
type SurfaceEvent interface{ surfaceEvent() }

type MessageEvent struct {
	Role conversation.Role
	Text string
}

type BusyEvent struct{ Busy bool }

type ToggleVisibleEvent struct{ Visible bool }

type ToggleWaitingEvent struct{ Waiting bool }

type PanelCloseEvent struct{}

func (MessageEvent) surfaceEvent()       {}
func (BusyEvent) surfaceEvent()          {}
func (ToggleVisibleEvent) surfaceEvent() {}
func (ToggleWaitingEvent) surfaceEvent() {}
func (PanelCloseEvent) surfaceEvent()    {}

// TeaSurface implements widget.Surface by queueing events for the
// bubbletea model. Widget calls arrive from the submit and monitor
// goroutines; the channel hands them to the single render loop. When the
// queue is full events are dropped rather than blocking the widget.
type TeaSurface struct {
	events chan SurfaceEvent
}

func NewTeaSurface() *TeaSurface {
	return &TeaSurface{events: make(chan SurfaceEvent, 256)}
}

// Events is drained by the TUI model.
func (s *TeaSurface) Events() <-chan SurfaceEvent { return s.events }

func (s *TeaSurface) push(e SurfaceEvent) {
	select {
	case s.events <- e:
	default:
		log.Warn().Str("component", "tea-surface").Msg("surface event dropped (queue full)")
	}
}

func (s *TeaSurface) AppendMessage(role conversation.Role, text string) {
	s.push(MessageEvent{Role: role, Text: text})
}

func (s *TeaSurface) SetBusy(busy bool) { s.push(BusyEvent{Busy: busy}) }

func (s *TeaSurface) SetToggleVisible(visible bool) { s.push(ToggleVisibleEvent{Visible: visible}) }

func (s *TeaSurface) SetToggleWaiting(waiting bool) { s.push(ToggleWaitingEvent{Waiting: waiting}) }

func (s *TeaSurface) ClosePanel() { s.push(PanelCloseEvent{}) }
