// Package widget implements the conversational assistant widget that rides
// along the generated books list view. It owns the conversation transcript,
// talks to the browse chat endpoint, translates returned identifier lists
// into the host table's row filter, and watches the host control tree to
// decide when the affordance should be visible at all.
//
// The host UI is consumed strictly through the capability interfaces in
// pkg/uitree; the widget never holds typed references into the host and
// re-discovers controls on every check, since the host list view mounts and
// unmounts asynchronously on client-side navigation.
package widget
