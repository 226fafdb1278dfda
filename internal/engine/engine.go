// Package engine collapses the window, layout, and stage controllers into
// a single LayoutEngine with clearly separated modules and explicit
// references between them, avoiding a tangle of controllers that each
// hold pointers back to one another. It owns the compositor transport,
// the event router, and every controller, and wires the control
// server's strategy table to them.
package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"hypr-layoutd/internal/cache"
	"hypr-layoutd/internal/config"
	"hypr-layoutd/internal/control"
	"hypr-layoutd/internal/events"
	"hypr-layoutd/internal/hypr"
	"hypr-layoutd/internal/layoutctl"
	"hypr-layoutd/internal/notify"
	"hypr-layoutd/internal/stagectl"
	"hypr-layoutd/internal/supervise"
	"hypr-layoutd/internal/windowctl"
)

// Engine wires the Window, Layout, and Stage controllers to a shared
// transport, event router, and control server.
type Engine struct {
	cfg       config.Config
	transport *hypr.Transport
	cache     *cache.Cache
	router    *events.Router
	windows   *windowctl.Controller
	pins      *windowctl.PinRegistry
	layout    *layoutctl.Controller
	stage     *stagectl.Controller
	notifier  *notify.Sink
	server    *control.Server
}

// New resolves the compositor transport and builds every controller
// around cfg. notifier may be nil (Dial failed); the engine degrades to
// swallowing notifications silently.
func New(cfg config.Config, notifier *notify.Sink) (*Engine, error) {
	transport, err := hypr.New()
	if err != nil {
		return nil, err
	}
	return newEngine(cfg, transport, notifier)
}

func newEngine(cfg config.Config, transport *hypr.Transport, notifier *notify.Sink) (*Engine, error) {
	c := cache.New(cfg.CacheTTL)
	windows := windowctl.New(transport, c)

	var notifyFn func(string)
	if notifier != nil {
		notifyFn = func(msg string) { notifier.Notify(msg, "", cfg.NotifyTimeoutMS) }
	}
	pins := windowctl.NewPinRegistry(windows, notifyFn)
	layout := layoutctl.New(windows, cfg.NeighborThresholdPx)
	stage := stagectl.New(windows, stagectl.Options{
		Debounce:      cfg.StageDebounce,
		GroupSize:     cfg.StageGroupSize,
		RetryAttempts: cfg.StageRetryAttempts,
		RetrySpacing:  cfg.StageRetrySpacing,
	})

	router := events.New()
	e := &Engine{
		cfg:       cfg,
		transport: transport,
		cache:     c,
		router:    router,
		windows:   windows,
		pins:      pins,
		layout:    layout,
		stage:     stage,
		notifier:  notifier,
	}
	e.subscribeEvents()

	deps := control.Deps{
		Windows: windows,
		Pins:    pins,
		Layout:  layout,
		Stage:   stage,
		Focus:   control.NewFocusHistory(),
	}
	server, err := control.NewServer(cfg.ControlSocketPath, deps)
	if err != nil {
		return nil, err
	}
	e.server = server
	return e, nil
}

// subscribeEvents wires the stage controller's incremental handlers to the
// compositor's openwindow/closewindow/workspace frames.
func (e *Engine) subscribeEvents() {
	e.router.Subscribe("openwindow", func(f events.Frame) {
		e.stage.HandleOpenWindow(context.Background(), f.Data, "", time.Now())
	})
	e.router.Subscribe("closewindow", func(f events.Frame) {
		address, _, _ := strings.Cut(f.Data, ",")
		e.stage.HandleCloseWindow(context.Background(), address, "", time.Now())
	})
	e.router.Subscribe("workspace", func(f events.Frame) {
		ws, err := strconv.Atoi(strings.TrimSpace(f.Data))
		if err != nil {
			return
		}
		e.stage.HandleWorkspaceEvent(ws, "")
	})
}

// Run starts the event-socket consumer and the control server, supervised
// with panic-recovery and backoff, and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	supervise.Run(ctx, "event-router", &wg, func(ctx context.Context) {
		lines := e.transport.EventStream(ctx)
		e.router.Start(ctx, lines)
	}, supervise.Options{})

	supervise.Run(ctx, "control-server", &wg, func(ctx context.Context) {
		if err := e.server.Serve(ctx); err != nil && ctx.Err() == nil {
			slog.Error("[engine] control server stopped", "error", err)
		}
	}, supervise.Options{})

	<-ctx.Done()
	_ = e.server.Close()
	wg.Wait()
	return ctx.Err()
}

// Windows, Pins, Layout, Stage expose the engine's controllers for
// programmatic callers (tests, alternate front-ends).
func (e *Engine) Windows() *windowctl.Controller { return e.windows }
func (e *Engine) Pins() *windowctl.PinRegistry   { return e.pins }
func (e *Engine) Layout() *layoutctl.Controller  { return e.layout }
func (e *Engine) Stage() *stagectl.Controller    { return e.stage }
