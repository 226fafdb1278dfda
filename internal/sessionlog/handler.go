// Package sessionlog provides a slog.Handler that tees WARN+ log records to
// the desktop notification sink (internal/notify), so daemon failures
// surface to the user even without a terminal attached. Every call site in
// this daemon logs with a leading bracketed component tag ("[stagectl] ...",
// "[windowctl] ...") instead of slog groups, so the handler reads that tag
// back out of the message to decide which component is talking and to
// collapse repeated notifications from it: internal/supervise retries a
// crashed worker with backoff, and without suppression each retry's log line
// would pop its own desktop notification.
package sessionlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// EntryCallback is invoked for each log record at or above the capture
// threshold. component is the record message's leading bracketed tag with
// the brackets stripped ("stagectl"), or "" if the message had none; msg is
// the message with that tag removed.
type EntryCallback func(ts time.Time, level slog.Level, component, msg string)

// notifyState is shared by a TeeHandler and every clone WithAttrs/WithGroup
// produces from it, so suppression applies across the whole handler tree
// rather than resetting every time a sub-logger is derived.
type notifyState struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func (s *notifyState) allow(component string, suppress time.Duration, now time.Time) bool {
	if suppress <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.last[component]; ok && now.Sub(last) < suppress {
		return false
	}
	if s.last == nil {
		s.last = make(map[string]time.Time)
	}
	s.last[component] = now
	return true
}

// TeeHandler wraps a base [slog.Handler]. Every record is forwarded to base
// regardless of level; records at or above minLevel are additionally handed
// to callback, at most once per suppress window per component tag.
type TeeHandler struct {
	base     slog.Handler
	callback EntryCallback
	minLevel slog.Level
	suppress time.Duration
	state    *notifyState
}

// NewTeeHandler creates a TeeHandler that delegates to base and invokes
// callback for every record whose level is >= minLevel, at most once per
// suppress window per component tag. A nil callback is safe; the handler
// then just delegates to base. suppress <= 0 disables suppression.
func NewTeeHandler(base slog.Handler, minLevel slog.Level, suppress time.Duration, callback EntryCallback) *TeeHandler {
	return &TeeHandler{
		base:     base,
		callback: callback,
		minLevel: minLevel,
		suppress: suppress,
		state:    &notifyState{},
	}
}

// Enabled reports whether the base handler is enabled for the given level.
// The callback threshold (minLevel) does not affect this; we always let the
// base handler decide visibility.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// splitComponent strips a leading "[tag] " component marker from msg,
// returning the tag without brackets and the remaining message. Messages
// without the marker are returned unchanged with an empty tag.
func splitComponent(msg string) (component, rest string) {
	if !strings.HasPrefix(msg, "[") {
		return "", msg
	}
	end := strings.IndexByte(msg, ']')
	if end < 0 {
		return "", msg
	}
	return msg[1:end], strings.TrimSpace(msg[end+1:])
}

// Handle forwards the record to the base handler, then conditionally
// invokes the callback if the record's level meets or exceeds minLevel and
// the component hasn't notified within the suppress window.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.base.Handle(ctx, record)

	if h.callback != nil && record.Level >= h.minLevel {
		component, rest := splitComponent(record.Message)
		if h.state.allow(component, h.suppress, record.Time) {
			func() {
				defer func() {
					if r := recover(); r != nil {
						// Logged to stderr directly, not slog, to avoid
						// recursive TeeHandler invocation.
						fmt.Fprintf(os.Stderr, "[session-log] callback panicked: %v\n%s\n", r, debug.Stack())
					}
				}()
				h.callback(record.Time, record.Level, component, rest)
			}()
		}
	}

	// Returning the base handler error is intentional. slog.Logger emits it to
	// stderr as an internal fallback ("slog: <error>"), making handler
	// failures visible.
	return err
}

// WithAttrs returns a new TeeHandler whose base handler has the given
// attributes applied. The callback, minLevel, and suppression state are
// shared with h.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.base = h.base.WithAttrs(attrs)
	return &clone
}

// WithGroup returns a new TeeHandler whose base handler is wrapped with the
// given group name. Suppression keys off the component tag embedded in the
// message, not the slog group, so the group name only affects the base
// handler's own attribute nesting.
func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.base = h.base.WithGroup(name)
	return &clone
}
