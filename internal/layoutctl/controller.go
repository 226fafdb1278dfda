package layoutctl

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"hypr-layoutd/internal/windowctl"
)

// defaultNeighborThresholdPx is the pixel tolerance used by neighbor
// detection when no override is configured.
const defaultNeighborThresholdPx = 50

// WindowSource is the subset of windowctl.Controller the Layout Controller
// needs; named as an interface so tests can substitute a fake.
type WindowSource interface {
	GetActiveWindow(ctx context.Context) (windowctl.Window, bool)
	WindowsInWorkspace(ctx context.Context, ws int) []windowctl.Window
	Monitors(ctx context.Context) []windowctl.Monitor
	Dispatch(ctx context.Context, action string) error
	InvalidateClients()
}

// Controller tracks per-workspace layout history, the floating/tiled
// toggle, and neighbor detection.
type Controller struct {
	windows WindowSource
	rng     *rand.Rand

	mu           sync.Mutex
	isFloating   map[int]bool
	history      map[int][]Placement
	historyAddrs map[int][]string
	threshold    int
}

// New returns a Controller reading windows through src. threshold is the
// neighbor-detection pixel tolerance (0 uses the default of 50px).
func New(src WindowSource, threshold int) *Controller {
	if threshold <= 0 {
		threshold = defaultNeighborThresholdPx
	}
	return &Controller{
		windows:      src,
		rng:          rand.New(rand.NewSource(1)),
		isFloating:   make(map[int]bool),
		history:      make(map[int][]Placement),
		historyAddrs: make(map[int][]string),
		threshold:    threshold,
	}
}

// IsFloating reports whether workspace ws is currently in floating mode.
func (c *Controller) IsFloating(ws int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isFloating[ws]
}

// ToggleFloatMode reads the active window to find the target workspace,
// then either floats the workspace's windows and applies the layout
// algorithm, or restores the last layout history and returns to tiled
// (still applying the algorithm afterward: a tiled compositor ignores
// move/resize on genuinely tiled windows, so the call is harmless).
func (c *Controller) ToggleFloatMode(ctx context.Context) error {
	active, ok := c.windows.GetActiveWindow(ctx)
	if !ok {
		return fmt.Errorf("layoutctl: no active window")
	}
	ws := active.Workspace

	windows := c.windows.WindowsInWorkspace(ctx, ws)
	monitor, ok := c.monitorForWorkspace(ctx, ws)
	if !ok {
		return fmt.Errorf("layoutctl: no monitor for workspace %d", ws)
	}
	rect := Rect{OX: monitor.X, OY: monitor.Y, SW: monitor.Width, SH: monitor.Height}

	c.mu.Lock()
	floating := c.isFloating[ws]
	c.mu.Unlock()

	if !floating {
		for _, w := range windows {
			if err := c.windows.Dispatch(ctx, "setfloating address:"+w.Address); err != nil {
				slog.Warn("[layoutctl] setfloating failed", "address", w.Address, "error", err)
			}
		}
	} else {
		c.saveHistory(ws, windows)
		c.restoreHistory(ctx, ws)
		for _, w := range windows {
			if err := c.windows.Dispatch(ctx, "settiled address:"+w.Address); err != nil {
				slog.Warn("[layoutctl] settiled failed", "address", w.Address, "error", err)
			}
		}
	}

	c.applyLayout(ctx, windows, rect)

	c.mu.Lock()
	c.isFloating[ws] = !floating
	c.mu.Unlock()

	c.windows.InvalidateClients()
	return nil
}

func (c *Controller) monitorForWorkspace(ctx context.Context, ws int) (windowctl.Monitor, bool) {
	for _, m := range c.windows.Monitors(ctx) {
		if m.ActiveWorkspaceID == ws {
			return m, true
		}
	}
	return windowctl.Monitor{}, false
}

func (c *Controller) applyLayout(ctx context.Context, windows []windowctl.Window, rect Rect) {
	placements := FloatingLayout(rect, len(windows), c.rng)
	for i, w := range windows {
		if i >= len(placements) {
			break
		}
		moveAndResize(ctx, c.windows, w.Address, placements[i])
	}
}

func (c *Controller) saveHistory(ws int, windows []windowctl.Window) {
	addrs := make([]string, len(windows))
	placements := make([]Placement, len(windows))
	for i, w := range windows {
		addrs[i] = w.Address
		placements[i] = Placement{X: w.X, Y: w.Y, W: w.W, H: w.H}
	}
	c.mu.Lock()
	c.history[ws] = placements
	c.historyAddrs[ws] = addrs
	c.mu.Unlock()
}

func (c *Controller) restoreHistory(ctx context.Context, ws int) {
	c.mu.Lock()
	addrs := c.historyAddrs[ws]
	placements := c.history[ws]
	c.mu.Unlock()

	for i, addr := range addrs {
		if i >= len(placements) {
			break
		}
		moveAndResize(ctx, c.windows, addr, placements[i])
	}
}

// moveAndResize issues the two sequential dispatches move_and_resize
// needs: movewindowpixel then resizewindowpixel, in order.
func moveAndResize(ctx context.Context, src WindowSource, address string, p Placement) {
	if err := src.Dispatch(ctx, fmt.Sprintf("movewindowpixel exact %d %d,address:%s", p.X, p.Y, address)); err != nil {
		slog.Warn("[layoutctl] movewindowpixel failed", "address", address, "error", err)
	}
	if err := src.Dispatch(ctx, fmt.Sprintf("resizewindowpixel exact %d %d,address:%s", p.W, p.H, address)); err != nil {
		slog.Warn("[layoutctl] resizewindowpixel failed", "address", address, "error", err)
	}
}

// Neighbor identifies which side b sits on relative to a.
type Neighbor int

const (
	NoNeighbor Neighbor = iota
	NeighborRight
	NeighborLeft
	NeighborTop
	NeighborBottom
)

// DetectNeighbor classifies b's position relative to a using the
// controller's configured pixel threshold. Only one relation is reported
// even if multiple edges are within tolerance; right/left are checked
// before top/bottom.
func (c *Controller) DetectNeighbor(a, b windowctl.Window) Neighbor {
	return detectNeighbor(a, b, c.threshold)
}

func detectNeighbor(a, b windowctl.Window, threshold int) Neighbor {
	verticalOverlap := intervalsOverlap(a.Y, a.Y+a.H, b.Y, b.Y+b.H)
	horizontalOverlap := intervalsOverlap(a.X, a.X+a.W, b.X, b.X+b.W)

	if verticalOverlap {
		if abs(a.X+a.W-b.X) <= threshold {
			return NeighborRight
		}
		if abs(b.X+b.W-a.X) <= threshold {
			return NeighborLeft
		}
	}
	if horizontalOverlap {
		if abs(a.Y+a.H-b.Y) <= threshold {
			return NeighborBottom
		}
		if abs(b.Y+b.H-a.Y) <= threshold {
			return NeighborTop
		}
	}
	return NoNeighbor
}

func intervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
