package control

import (
	"sync"

	"hypr-layoutd/internal/layoutctl"
	"hypr-layoutd/internal/stagectl"
	"hypr-layoutd/internal/windowctl"
)

// Deps bundles every controller a strategy might need. Passing the full
// bundle to every strategy avoids a dynamic-dispatch layer on top of the
// string-keyed strategy table; a strategy's declared Mode is documentation
// of intent (which controller it primarily drives), not an enforcement
// mechanism.
type Deps struct {
	Windows *windowctl.Controller
	Pins    *windowctl.PinRegistry
	Layout  *layoutctl.Controller
	Stage   *stagectl.Controller
	Focus   *FocusHistory
}

const recentFocusStackSize = 20

// FocusHistory is the "toggle" strategy's bounded recent-focus stack of
// (class, address) pairs in push order, used to alternate focus between a
// class and whatever was focused before it.
type FocusHistory struct {
	mu      sync.Mutex
	entries []focusEntry
}

type focusEntry struct {
	class   string
	address string
}

// NewFocusHistory returns an empty history.
func NewFocusHistory() *FocusHistory {
	return &FocusHistory{}
}

// Push records address as the most recently focused window of class,
// dropping the oldest entry once the stack exceeds recentFocusStackSize.
func (h *FocusHistory) Push(class, address string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, focusEntry{class: class, address: address})
	if len(h.entries) > recentFocusStackSize {
		h.entries = h.entries[len(h.entries)-recentFocusStackSize:]
	}
}

// Previous returns the most recently pushed address that is not exclude,
// if any, and removes it from the stack.
func (h *FocusHistory) Previous(exclude string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].address != exclude {
			addr := h.entries[i].address
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return addr, true
		}
	}
	return "", false
}
