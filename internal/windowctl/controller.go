package windowctl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"hypr-layoutd/internal/cache"
	"hypr-layoutd/internal/hypr"
)

const (
	kindClients  = "clients"
	kindMonitors = "monitors"
)

// Transport is the subset of internal/hypr.Transport the controller needs;
// named here so tests can substitute a fake without importing net/unix.
type Transport interface {
	Command(ctx context.Context, text string) ([]byte, error)
}

// Controller runs stateless compositor queries. It reads through a
// cache for clients/monitors snapshots and issues dispatches directly
// (dispatches are never cached).
type Controller struct {
	transport Transport
	cache     *cache.Cache
}

// New returns a Controller backed by transport, with clients/monitors
// queries read through c.
func New(transport Transport, c *cache.Cache) *Controller {
	return &Controller{transport: transport, cache: c}
}

type rawClient struct {
	Address        string `json:"address"`
	Class          string `json:"class"`
	Floating       bool   `json:"floating"`
	FocusHistoryID int    `json:"focusHistoryID"`
	At             [2]int `json:"at"`
	Size           [2]int `json:"size"`
	Workspace      struct {
		ID int `json:"id"`
	} `json:"workspace"`
}

func (c rawClient) toWindow() Window {
	return Window{
		Address:        c.Address,
		Class:          c.Class,
		Workspace:      c.Workspace.ID,
		X:              c.At[0],
		Y:              c.At[1],
		W:              c.Size[0],
		H:              c.Size[1],
		Floating:       c.Floating,
		FocusHistoryID: c.FocusHistoryID,
	}
}

type rawMonitor struct {
	Name            string `json:"name"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	ActiveWorkspace struct {
		ID int `json:"id"`
	} `json:"activeWorkspace"`
}

func (m rawMonitor) toMonitor() Monitor {
	return Monitor{
		Name:              m.Name,
		Width:             m.Width,
		Height:            m.Height,
		X:                 m.X,
		Y:                 m.Y,
		ActiveWorkspaceID: m.ActiveWorkspace.ID,
	}
}

// Clients returns every window known to the compositor, read through the
// cache. On transport or decode failure it logs and returns nil: absent
// data reads as "workspace empty", not a hard failure.
func (c *Controller) Clients(ctx context.Context) []Window {
	v, err := c.cache.Fetch(kindClients, func() (any, error) {
		return c.fetchClients(ctx)
	})
	if err != nil {
		slog.Warn("[windowctl] clients query failed", "error", err)
		return nil
	}
	return v.([]Window)
}

func (c *Controller) fetchClients(ctx context.Context) ([]Window, error) {
	body, err := c.transport.Command(ctx, "clients")
	if err != nil {
		return nil, err
	}
	var raw []rawClient
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", hypr.ErrMalformedResponse, err)
	}
	out := make([]Window, len(raw))
	for i, rc := range raw {
		out[i] = rc.toWindow()
	}
	return out, nil
}

// Monitors returns every compositor output, read through the cache.
func (c *Controller) Monitors(ctx context.Context) []Monitor {
	v, err := c.cache.Fetch(kindMonitors, func() (any, error) {
		return c.fetchMonitors(ctx)
	})
	if err != nil {
		slog.Warn("[windowctl] monitors query failed", "error", err)
		return nil
	}
	return v.([]Monitor)
}

func (c *Controller) fetchMonitors(ctx context.Context) ([]Monitor, error) {
	body, err := c.transport.Command(ctx, "monitors")
	if err != nil {
		return nil, err
	}
	var raw []rawMonitor
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", hypr.ErrMalformedResponse, err)
	}
	out := make([]Monitor, len(raw))
	for i, rm := range raw {
		out[i] = rm.toMonitor()
	}
	return out, nil
}

// InvalidateClients drops the cached clients snapshot, forcing the next
// query to re-fetch (used after dispatches that change window state).
func (c *Controller) InvalidateClients() {
	c.cache.Revoke(kindClients)
}

// GetActiveWindow returns the compositor's currently active window.
// activewindow is never cached: it changes on every focus event, so it's
// treated as a point query rather than a cached snapshot kind.
func (c *Controller) GetActiveWindow(ctx context.Context) (Window, bool) {
	body, err := c.transport.Command(ctx, "activewindow")
	if err != nil {
		slog.Debug("[windowctl] activewindow query failed", "error", err)
		return Window{}, false
	}
	var raw rawClient
	if err := json.Unmarshal(body, &raw); err != nil {
		slog.Warn("[windowctl] activewindow decode failed", "error", err)
		return Window{}, false
	}
	if raw.Address == "" {
		return Window{}, false
	}
	return raw.toWindow(), true
}

// GetWindowByClass returns the address of a window matching class, if any.
func (c *Controller) GetWindowByClass(ctx context.Context, class string) (string, bool) {
	for _, w := range c.Clients(ctx) {
		if w.Class == class {
			return w.Address, true
		}
	}
	return "", false
}

// WindowsInWorkspace returns every window currently in workspace ws.
func (c *Controller) WindowsInWorkspace(ctx context.Context, ws int) []Window {
	var out []Window
	for _, w := range c.Clients(ctx) {
		if w.Workspace == ws {
			out = append(out, w)
		}
	}
	return out
}

// Dispatch issues a raw compositor dispatch command in the "dispatch
// <action>" form. Dispatch results ("ok" or empty on error) are not
// cached.
func (c *Controller) Dispatch(ctx context.Context, action string) error {
	_, err := c.transport.Command(ctx, "dispatch "+action)
	return err
}

// Focus raises and focuses the window at address.
func (c *Controller) Focus(ctx context.Context, address string) error {
	return c.Dispatch(ctx, fmt.Sprintf("focuswindow address:%s", address))
}

// MoveToWorkspace moves the window at address to workspace ws.
func (c *Controller) MoveToWorkspace(ctx context.Context, address string, ws int) error {
	return c.Dispatch(ctx, fmt.Sprintf("movetoworkspace %d address:%s", ws, address))
}
