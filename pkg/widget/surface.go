package widget

import "github.com/go-go-golems/bookworm/pkg/conversation"

// Surface is the rendering boundary. The widget never touches a concrete
// UI toolkit; the host implements Surface with whatever it draws with.
// Calls may arrive from the widget's submit goroutine or from the
// readiness monitor, so implementations must be safe to call from
// goroutines other than the one that renders.
type Surface interface {
	// AppendMessage renders one message in the panel's scrollable list.
	// Rendered messages are not necessarily part of the stored transcript
	// (the greeting and the failure fallback are render-only).
	AppendMessage(role conversation.Role, text string)
	// SetBusy shows or hides the working indicator and toggles input
	// enablement.
	SetBusy(busy bool)
	// SetToggleVisible shows or hides the chat toggle affordance.
	SetToggleVisible(visible bool)
	// SetToggleWaiting marks the toggle busy-looking while the host
	// controls are still mounting.
	SetToggleWaiting(waiting bool)
	// ClosePanel force-closes the chat panel.
	ClosePanel()
}
