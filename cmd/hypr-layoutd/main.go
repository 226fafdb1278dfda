// Command hypr-layoutd is the compositor layout daemon: it holds the
// single-instance lock, connects to the compositor, and runs the window,
// layout, and stage controllers until signalled to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hypr-layoutd/internal/config"
	"hypr-layoutd/internal/engine"
	"hypr-layoutd/internal/notify"
	"hypr-layoutd/internal/sessionlog"
	"hypr-layoutd/internal/singleinstance"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config.yaml (default: XDG_CONFIG_HOME/hypr-layoutd/config.yaml)")
	lockPath := flag.String("lock", "", "path to the single-instance lock file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hypr-layoutd: load config %s: %v\n", path, err)
		return 1
	}

	lock, err := singleinstance.TryLock(*lockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hypr-layoutd: %v\n", err)
		return 1
	}
	defer lock.Release()

	notifier, err := notify.Dial()
	if err != nil {
		slog.Warn("[hypr-layoutd] desktop notifications unavailable", "error", err)
		notifier = nil
	}
	defer notifier.Close()

	base := slog.NewTextHandler(os.Stderr, nil)
	handler := sessionlog.NewTeeHandler(base, slog.LevelWarn, cfg.NotifySuppressWindow, func(_ time.Time, level slog.Level, component, msg string) {
		summary := "hypr-layoutd: " + level.String()
		if component != "" {
			summary = fmt.Sprintf("hypr-layoutd: %s (%s)", level, component)
		}
		notifier.Notify(summary, msg, cfg.NotifyTimeoutMS)
	})
	slog.SetDefault(slog.New(handler))

	eng, err := engine.New(cfg, notifier)
	if err != nil {
		slog.Error("[hypr-layoutd] failed to initialize engine", "error", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("[hypr-layoutd] starting", "control_socket", cfg.ControlSocketPath)
	if err := eng.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("[hypr-layoutd] engine stopped with error", "error", err)
		return 1
	}
	slog.Info("[hypr-layoutd] shut down cleanly")
	return 0
}
