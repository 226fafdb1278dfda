package stagectl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"hypr-layoutd/internal/windowctl"
)

// WindowSource is the subset of windowctl.Controller the Stage Controller
// needs.
type WindowSource interface {
	Clients(ctx context.Context) []windowctl.Window
	Monitors(ctx context.Context) []windowctl.Monitor
	GetActiveWindow(ctx context.Context) (windowctl.Window, bool)
	Dispatch(ctx context.Context, action string) error
	Focus(ctx context.Context, address string) error
	InvalidateClients()
}

// Options configures debounce and retry behaviour.
type Options struct {
	Debounce      time.Duration
	GroupSize     int
	RetryAttempts int
	RetrySpacing  time.Duration
}

func (o Options) applyDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = 100 * time.Millisecond
	}
	if o.GroupSize <= 0 {
		o.GroupSize = DefaultGroupSize
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 5
	}
	if o.RetrySpacing <= 0 {
		o.RetrySpacing = time.Second
	}
	return o
}

// Controller tracks per-workspace mode and group composition, runs the
// stage-manager layout algorithm, and handles incremental window events.
type Controller struct {
	windows WindowSource
	opts    Options

	mu              sync.Mutex
	workspaces      map[int]*workspaceState
	trackedWorkspace int
	hasTracked       bool
}

// New returns a Controller reading/writing through windows.
func New(windows WindowSource, opts Options) *Controller {
	return &Controller{
		windows:    windows,
		opts:       opts.applyDefaults(),
		workspaces: make(map[int]*workspaceState),
	}
}

func (c *Controller) stateFor(ws int) *workspaceState {
	s, ok := c.workspaces[ws]
	if !ok {
		s = newWorkspaceState()
		c.workspaces[ws] = s
	}
	return s
}

// Mode returns the current mode of workspace ws.
func (c *Controller) Mode(ws int) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateFor(ws).mode
}

// Groups returns a copy of workspace ws's current window groups.
func (c *Controller) Groups(ws int) []WindowGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stateFor(ws)
	out := make([]WindowGroup, len(s.groups))
	copy(out, s.groups)
	return out
}

// Ledger returns a copy of workspace ws's position ledger.
func (c *Controller) Ledger(ws int) []PositionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stateFor(ws)
	out := make([]PositionRecord, len(s.ledger))
	copy(out, s.ledger)
	return out
}

func (c *Controller) monitorForWorkspace(ctx context.Context, ws int) (windowctl.Monitor, bool) {
	for _, m := range c.windows.Monitors(ctx) {
		if m.ActiveWorkspaceID == ws {
			return m, true
		}
	}
	return windowctl.Monitor{}, false
}

func rectOf(m windowctl.Monitor) Rect {
	return Rect{OX: m.X, OY: m.Y, SW: m.Width, SH: m.Height}
}

// EnterStageManager sets the workspace mode, rebuilds groups from a
// fresh clients fetch, and applies the layout — retrying up to
// opts.RetryAttempts times if the ledger length is unchanged after
// applying, which suggests lost events.
func (c *Controller) EnterStageManager(ctx context.Context, ws int) error {
	c.mu.Lock()
	s := c.stateFor(ws)
	s.mode = StageManager
	c.trackedWorkspace = ws
	c.hasTracked = true
	c.mu.Unlock()

	c.windows.InvalidateClients()
	c.rebuildGroups(ctx, ws)

	for attempt := 0; attempt < c.opts.RetryAttempts; attempt++ {
		before := len(c.Ledger(ws))
		if err := c.applyLayout(ctx, ws); err != nil {
			return err
		}
		after := len(c.Ledger(ws))
		if after != before || after > 0 || len(c.Groups(ws)) == 0 {
			return nil
		}
		slog.Warn("[stagectl] ledger unchanged after apply, retrying", "workspace", ws, "attempt", attempt+1)
		select {
		case <-time.After(c.opts.RetrySpacing):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	slog.Error("[stagectl] giving up applying stage layout", "workspace", ws, "attempts", c.opts.RetryAttempts)
	return nil
}

func (c *Controller) rebuildGroups(ctx context.Context, ws int) {
	clients := c.windows.Clients(ctx)
	inWorkspace := make([]windowctl.Window, 0, len(clients))
	for _, w := range clients {
		if w.Workspace == ws {
			inWorkspace = append(inWorkspace, w)
		}
	}
	groups := createWindowGroups(inWorkspace, c.opts.GroupSize)

	c.mu.Lock()
	s := c.stateFor(ws)
	s.groups = groups
	if s.activeGroupIndex >= len(groups) {
		s.activeGroupIndex = 0
	}
	c.mu.Unlock()
}

// applyLayout floats every window in the workspace, positions the
// active group's main window, then lays out the mini stack and rewrites
// the ledger.
func (c *Controller) applyLayout(ctx context.Context, ws int) error {
	monitor, ok := c.monitorForWorkspace(ctx, ws)
	if !ok {
		return fmt.Errorf("stagectl: no monitor for workspace %d", ws)
	}
	rect := rectOf(monitor)

	c.mu.Lock()
	s := c.stateFor(ws)
	groups := append([]WindowGroup(nil), s.groups...)
	active := s.activeGroupIndex
	c.mu.Unlock()

	if len(groups) == 0 {
		c.mu.Lock()
		s.ledger = nil
		c.mu.Unlock()
		return nil
	}

	for _, g := range groups {
		for _, addr := range g.addresses() {
			if err := c.windows.Dispatch(ctx, "setfloating address:"+addr); err != nil {
				slog.Warn("[stagectl] setfloating failed", "address", addr, "error", err)
			}
		}
	}

	main := groups[active].Main
	x, y, w, h := mainPlacement(rect)
	moveAndResize(ctx, c.windows, main.Address, x, y, w, h)
	if err := c.windows.Dispatch(ctx, "alterzorder top address:"+main.Address); err != nil {
		slog.Warn("[stagectl] alterzorder top failed", "address", main.Address, "error", err)
	}
	if err := c.windows.Focus(ctx, main.Address); err != nil {
		slog.Warn("[stagectl] focus main failed", "address", main.Address, "error", err)
	}

	minis := miniStack(groups, active)
	records := miniPlacements(rect, minis)
	for _, r := range records {
		moveAndResize(ctx, c.windows, r.Address, r.X, r.Y, r.W, r.H)
	}

	c.mu.Lock()
	s.ledger = records
	c.mu.Unlock()
	return nil
}

func moveAndResize(ctx context.Context, src WindowSource, address string, x, y, w, h int) {
	if err := src.Dispatch(ctx, fmt.Sprintf("movewindowpixel exact %d %d,address:%s", x, y, address)); err != nil {
		slog.Warn("[stagectl] movewindowpixel failed", "address", address, "error", err)
	}
	if err := src.Dispatch(ctx, fmt.Sprintf("resizewindowpixel exact %d %d,address:%s", w, h, address)); err != nil {
		slog.Warn("[stagectl] resizewindowpixel failed", "address", address, "error", err)
	}
}

// ExitStageManager tiles every window in every group of ws, clears its
// groups, and sets mode back to Tiled.
func (c *Controller) ExitStageManager(ctx context.Context, ws int) error {
	c.mu.Lock()
	s := c.stateFor(ws)
	groups := append([]WindowGroup(nil), s.groups...)
	c.mu.Unlock()

	for _, g := range groups {
		for _, addr := range g.addresses() {
			if err := c.windows.Dispatch(ctx, "settiled address:"+addr); err != nil {
				slog.Warn("[stagectl] settiled failed", "address", addr, "error", err)
			}
		}
	}

	c.mu.Lock()
	s.groups = nil
	s.ledger = nil
	s.mode = Tiled
	c.mu.Unlock()
	return nil
}

// ToggleLayoutMode flips stage-manager mode for the workspace containing
// the active window.
func (c *Controller) ToggleLayoutMode(ctx context.Context) error {
	active, ok := c.windows.GetActiveWindow(ctx)
	if !ok {
		return fmt.Errorf("stagectl: no active window")
	}
	ws := active.Workspace
	if c.Mode(ws) == StageManager {
		return c.ExitStageManager(ctx, ws)
	}
	return c.EnterStageManager(ctx, ws)
}

// CycleMainWindow rotates the active group's [main, side...] list one
// position left, focuses the new main, and re-applies the layout. No-op
// unless the active workspace is in stage-manager mode with at least one
// group.
func (c *Controller) CycleMainWindow(ctx context.Context) error {
	active, ok := c.windows.GetActiveWindow(ctx)
	if !ok {
		return fmt.Errorf("stagectl: no active window")
	}
	ws := active.Workspace

	c.mu.Lock()
	s := c.stateFor(ws)
	if s.mode != StageManager || len(s.groups) == 0 {
		c.mu.Unlock()
		return nil
	}
	idx := s.activeGroupIndex
	g := s.groups[idx]
	rotated := WindowGroup{}
	if len(g.Side) == 0 {
		c.mu.Unlock()
		return nil
	}
	rotated.Main = g.Side[0]
	rotated.Side = append(append([]windowctl.Window(nil), g.Side[1:]...), g.Main)
	s.groups[idx] = rotated
	c.mu.Unlock()

	if err := c.windows.Focus(ctx, rotated.Main.Address); err != nil {
		slog.Warn("[stagectl] focus new main failed", "address", rotated.Main.Address, "error", err)
	}
	return c.applyLayout(ctx, ws)
}

// eventDebounced reports whether an event for ws arrives within the
// configured debounce window of the last processed event for that
// workspace, and records the processed timestamp when it does not.
func (c *Controller) eventDebounced(ws int, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stateFor(ws)
	if !s.lastEventAt.IsZero() && now.Sub(s.lastEventAt) < c.opts.Debounce {
		return true
	}
	s.lastEventAt = now
	return false
}

// HandleOpenWindow handles a newly opened window without rebuilding the
// whole layout. data is the raw openwindow event payload
// ("address,workspace,class,title"); monitorHint identifies the physical
// output for queueing cross-workspace events.
func (c *Controller) HandleOpenWindow(ctx context.Context, data, monitorHint string, now time.Time) {
	address, ws, ok := parseWindowEvent(data, c.windows.Clients(ctx))
	if !ok {
		return
	}
	if !c.isTrackedWorkspace(ws) {
		c.queue(ws, monitorHint, func() { c.HandleOpenWindow(ctx, data, monitorHint, now) })
		return
	}
	if c.eventDebounced(ws, now) {
		return
	}
	if c.Mode(ws) != StageManager {
		return
	}

	monitor, ok := c.monitorForWorkspace(ctx, ws)
	if !ok {
		return
	}
	rect := rectOf(monitor)

	c.mu.Lock()
	s := c.stateFor(ws)
	rec := nextMiniPosition(rect, s.ledger)
	rec.Address = address
	s.ledger = append(s.ledger, rec)
	c.mu.Unlock()

	if err := c.windows.Dispatch(ctx, "setfloating address:"+address); err != nil {
		slog.Warn("[stagectl] setfloating failed", "address", address, "error", err)
	}
	moveAndResize(ctx, c.windows, address, rec.X, rec.Y, rec.W, rec.H)
	c.windows.InvalidateClients()
	if err := c.windows.Dispatch(ctx, "alterzorder bottom address:"+address); err != nil {
		slog.Warn("[stagectl] alterzorder bottom failed", "address", address, "error", err)
	}
}

// HandleCloseWindow re-packs the ledger for surviving windows,
// compacting columns top-to-bottom, and re-applies geometry to any
// entry whose target position changed.
func (c *Controller) HandleCloseWindow(ctx context.Context, address, monitorHint string, now time.Time) {
	ws, ok := c.workspaceOwningAddress(address)
	if !ok {
		return
	}
	if !c.isTrackedWorkspace(ws) {
		c.queue(ws, monitorHint, func() { c.HandleCloseWindow(ctx, address, monitorHint, now) })
		return
	}
	if c.eventDebounced(ws, now) {
		return
	}
	if c.Mode(ws) != StageManager {
		return
	}

	monitor, ok := c.monitorForWorkspace(ctx, ws)
	if !ok {
		return
	}
	rect := rectOf(monitor)

	c.mu.Lock()
	s := c.stateFor(ws)
	surviving := make([]windowAddr, 0, len(s.ledger))
	for _, r := range s.ledger {
		if r.Address != address {
			surviving = append(surviving, windowAddr{Address: r.Address})
		}
	}
	c.mu.Unlock()

	windows := make([]windowctl.Window, len(surviving))
	for i, w := range surviving {
		windows[i] = windowctl.Window{Address: w.Address}
	}
	repacked := miniPlacements(rect, windows)

	c.mu.Lock()
	old := s.ledger
	s.ledger = repacked
	c.mu.Unlock()

	oldByAddr := make(map[string]PositionRecord, len(old))
	for _, r := range old {
		oldByAddr[r.Address] = r
	}
	for _, r := range repacked {
		prev, existed := oldByAddr[r.Address]
		if !existed || prev.X != r.X || prev.Y != r.Y || prev.W != r.W || prev.H != r.H {
			moveAndResize(ctx, c.windows, r.Address, r.X, r.Y, r.W, r.H)
		}
	}
}

type windowAddr struct{ Address string }

// workspaceOwningAddress finds which tracked workspace currently lists
// address in its ledger.
func (c *Controller) workspaceOwningAddress(address string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ws, s := range c.workspaces {
		for _, r := range s.ledger {
			if r.Address == address {
				return ws, true
			}
		}
	}
	return 0, false
}

func (c *Controller) isTrackedWorkspace(ws int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasTracked && c.trackedWorkspace == ws
}

func (c *Controller) queue(ws int, monitorHint string, run func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stateFor(ws)
	s.pending = append(s.pending, pendingOp{monitorHint: monitorHint, run: run})
}

// HandleWorkspaceEvent acts as a queued-task trigger: when focus shifts
// to monitorHint, replay any operations queued for it.
func (c *Controller) HandleWorkspaceEvent(ws int, monitorHint string) {
	c.mu.Lock()
	c.trackedWorkspace = ws
	c.hasTracked = true

	var toRun []pendingOp
	for _, s := range c.workspaces {
		var keep []pendingOp
		for _, op := range s.pending {
			if op.monitorHint == monitorHint {
				toRun = append(toRun, op)
			} else {
				keep = append(keep, op)
			}
		}
		s.pending = keep
	}
	c.mu.Unlock()

	for _, op := range toRun {
		op.run()
	}
}

// parseWindowEvent parses a Hyprland openwindow event payload
// ("address,workspace,class,title") and resolves the workspace id by
// looking up the address in a fresh clients snapshot (the event carries a
// workspace name, not id).
func parseWindowEvent(data string, clients []windowctl.Window) (address string, workspace int, ok bool) {
	fields := strings.SplitN(data, ",", 2)
	if len(fields) == 0 || fields[0] == "" {
		return "", 0, false
	}
	address = fields[0]
	for _, w := range clients {
		if w.Address == address {
			return address, w.Workspace, true
		}
	}
	return address, 0, false
}
