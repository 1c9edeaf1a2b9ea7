package widget

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/chatclient"
	"github.com/go-go-golems/bookworm/pkg/conversation"
	"github.com/go-go-golems/bookworm/pkg/uitree"
)

// FallbackMessage is rendered as the assistant's answer when the chat call
// fails. It is render-only and never stored in the transcript, so a failed
// call cannot poison the history sent with later requests.
const FallbackMessage = "Open the Browse Books list to use filtering."

// Greeting is rendered when the widget starts. Render-only, like the
// fallback.
const Greeting = "Ask about books. I can answer and narrow the list when needed."

// ChatTransport is the slice of the chat client the controller needs.
// Satisfied by *chatclient.Client.
type ChatTransport interface {
	SendChat(ctx context.Context, message string, history []conversation.Turn) (chatclient.Response, error)
}

// Config assembles one widget instance.
type Config struct {
	Transport ChatTransport
	Registry  uitree.Registry
	Navigator uitree.Navigator
	Surface   Surface

	TargetRoute      string
	Schedule         PollSchedule
	ReadinessTimeout time.Duration
}

// Widget is one live instance of the assistant widget. It owns its
// conversation store, its readiness monitor and its surface wiring, and
// releases all of them deterministically in Destroy. Repeated
// initialization must create separate instances rather than sharing
// module-level handles.
type Widget struct {
	id        string
	store     *conversation.Store
	transport ChatTransport
	bridge    *Bridge
	monitor   *Monitor
	surface   Surface
	logger    zerolog.Logger

	mu        sync.Mutex
	busy      bool
	destroyed bool
}

// New validates the wiring and builds a widget. The widget is inert until
// Start is called.
func New(cfg Config) (*Widget, error) {
	if cfg.Transport == nil {
		return nil, errors.New("widget: transport is required")
	}
	if cfg.Surface == nil {
		return nil, errors.New("widget: surface is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("widget: control registry is required")
	}

	id := uuid.NewString()
	w := &Widget{
		id:        id,
		store:     conversation.NewStore(),
		transport: cfg.Transport,
		bridge:    NewBridge(cfg.Registry),
		surface:   cfg.Surface,
		logger:    log.With().Str("component", "widget").Str("widget_id", id).Logger(),
	}
	w.monitor = NewMonitor(MonitorConfig{
		Navigator:   cfg.Navigator,
		Bridge:      w.bridge,
		TargetRoute: cfg.TargetRoute,
		Schedule:    cfg.Schedule,
		Timeout:     cfg.ReadinessTimeout,
		OnState:     w.applyReadiness,
	})
	return w, nil
}

// ID identifies this instance in logs.
func (w *Widget) ID() string { return w.id }

// Start renders the greeting and begins readiness monitoring.
func (w *Widget) Start() {
	w.surface.AppendMessage(conversation.RoleAssistant, Greeting)
	w.monitor.Start()
}

// History exposes the stored transcript, mostly for the host and tests.
func (w *Widget) History() []conversation.Turn {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.History()
}

// Submit runs one conversational exchange. Blank input and submissions
// while a call is already in flight are silently dropped; the busy flag is
// the mutual-exclusion gate and is checked before any state mutation.
// Blocks until the exchange settles, so hosts call it off their render
// loop.
func (w *Widget) Submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	w.mu.Lock()
	if w.busy || w.destroyed {
		busy := w.busy
		w.mu.Unlock()
		w.logger.Debug().Bool("busy", busy).Msg("submit dropped")
		return
	}
	w.busy = true
	w.store.AppendUser(text)
	history := w.store.History()
	w.mu.Unlock()

	w.surface.AppendMessage(conversation.RoleUser, text)
	w.surface.SetBusy(true)

	// Busy must clear even if the transport or the surface panics.
	defer func() {
		w.mu.Lock()
		w.busy = false
		alive := !w.destroyed
		w.mu.Unlock()
		if alive {
			w.surface.SetBusy(false)
		}
	}()

	resp, err := w.transport.SendChat(ctx, text, history)

	w.mu.Lock()
	alive := !w.destroyed
	if err == nil && resp.Reply != "" {
		w.store.AppendAssistant(resp.Reply)
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn().Err(err).Msg("chat call failed")
		if alive {
			w.surface.AppendMessage(conversation.RoleAssistant, FallbackMessage)
		}
		return
	}

	if !alive {
		w.logger.Debug().Msg("chat call resolved after destroy, dropping result")
		return
	}

	if resp.Reply != "" {
		w.surface.AppendMessage(conversation.RoleAssistant, resp.Reply)
	}

	if resp.NeedsVectorSearch {
		// A search ran, so the identifier list is authoritative even when
		// empty; empty must narrow the table to nothing, not clear it.
		ids := resp.IDs
		if ids == nil {
			ids = []string{}
		}
		if !w.bridge.ApplyIDs(ids) {
			w.logger.Warn().Msg("books table unavailable, skipping filter")
		}
	}
}

// applyReadiness maps monitor output onto the surface.
func (w *Widget) applyReadiness(st State) {
	w.mu.Lock()
	alive := !w.destroyed
	w.mu.Unlock()
	if !alive {
		return
	}
	switch st.Phase {
	case PhaseNotOnTarget:
		w.surface.SetToggleVisible(false)
		w.surface.ClosePanel()
	case PhaseWaiting:
		w.surface.SetToggleVisible(true)
		w.surface.SetToggleWaiting(true)
	case PhaseReady:
		w.surface.SetToggleVisible(true)
		w.surface.SetToggleWaiting(false)
	}
}

// Destroy stops the readiness monitor, detaches the navigation listener
// and marks the instance dead. An in-flight chat call is not cancelled,
// but its resolution becomes a no-op. Idempotent.
func (w *Widget) Destroy() {
	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.mu.Unlock()

	w.monitor.Stop()
	w.logger.Debug().Msg("widget destroyed")
}
