// Package windowctl provides stateless compositor queries (active window,
// windows by class/workspace, focus, move) plus the workspace-independent
// PinGroup registry.
package windowctl

// Window is the controller's view of a compositor client: an opaque
// address, its class, workspace, rectangle, floating state, and
// focus-history position. The controller never fabricates these —
// every value is sourced from a compositor query.
type Window struct {
	Address        string
	Class          string
	Workspace      int
	X, Y           int
	W, H           int
	Floating       bool
	FocusHistoryID int
}

// Monitor is a read-through view of a compositor output.
type Monitor struct {
	Name              string
	Width             int
	Height            int
	X, Y              int
	ActiveWorkspaceID int
}

// Rect returns the monitor's usable rectangle in (x, y, w, h) form, the
// shape the floating-layout and stage-manager algorithms consume.
func (m Monitor) Rect() (ox, oy, sw, sh int) {
	return m.X, m.Y, m.Width, m.Height
}
