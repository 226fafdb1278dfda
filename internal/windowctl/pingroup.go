package windowctl

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Direction selects which way toggle_within_group searches the current
// group's address list.
type Direction int

const (
	Forward Direction = iota
	Backward
)

const defaultGroupName = "Default"

type groupState struct {
	index int
}

// PinRegistry is the workspace-independent pin-group registry. It holds
// no IPC state of its own; the operations that need the active window
// (PinCurrentWindow, ToggleWithinGroup) read it through a Controller.
type PinRegistry struct {
	mu           sync.Mutex
	controller   *Controller
	groups       map[string][]string
	groupOrders  []string
	groupStates  map[string]*groupState
	classLookup  map[string]string
	currentGroup string
	hasCurrent   bool
	notify       func(message string)
}

// NewPinRegistry returns an empty registry bound to controller for
// active-window/focus queries. notify, if non-nil, receives user-facing
// notification text for actions that should surface a desktop
// notification; it is called without the registry lock held.
func NewPinRegistry(controller *Controller, notify func(message string)) *PinRegistry {
	if notify == nil {
		notify = func(string) {}
	}
	return &PinRegistry{
		controller:  controller,
		groups:      make(map[string][]string),
		groupStates: make(map[string]*groupState),
		classLookup: make(map[string]string),
		notify:      notify,
	}
}

// CreateGroup creates a group named name (or a generated name if name is
// empty) and makes it current. Idempotent on an existing name: returns it
// unchanged, without resetting its cursor or contents.
func (r *PinRegistry) CreateGroup(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = generateGroupName()
	}
	if _, exists := r.groups[name]; exists {
		r.currentGroup = name
		r.hasCurrent = true
		return name
	}

	r.groups[name] = nil
	r.groupStates[name] = &groupState{}
	r.groupOrders = append(r.groupOrders, name)
	r.currentGroup = name
	r.hasCurrent = true
	return name
}

func generateGroupName() string {
	return "group-" + uuid.NewString()[:8]
}

// PinCurrentWindow reads the active window and appends its address to the
// current group (creating "Default" if none exists), deduping, and records
// the class→address lookup.
func (r *PinRegistry) PinCurrentWindow(ctx context.Context) error {
	active, ok := r.controller.GetActiveWindow(ctx)
	if !ok {
		return fmt.Errorf("pingroup: no active window")
	}

	r.mu.Lock()
	if !r.hasCurrent {
		r.mu.Unlock()
		r.CreateGroup(defaultGroupName)
		r.mu.Lock()
	}
	group := r.currentGroup
	addrs := r.groups[group]
	if !contains(addrs, active.Address) {
		r.groups[group] = append(addrs, active.Address)
	}
	r.classLookup[active.Class] = active.Address
	r.mu.Unlock()

	r.notify(fmt.Sprintf("Lock window %s", active.Class))
	return nil
}

// ToggleWithinGroup searches the current group, in direction, for the first
// address different from the active window, focuses it, and advances the
// cursor. Reports ok=false ("no different windows") if every address in the
// group equals the active window's address, or there is no current group.
func (r *PinRegistry) ToggleWithinGroup(ctx context.Context, dir Direction) (ok bool, err error) {
	active, haveActive := r.controller.GetActiveWindow(ctx)

	r.mu.Lock()
	if !r.hasCurrent {
		r.mu.Unlock()
		return false, nil
	}
	addrs := r.groups[r.currentGroup]
	n := len(addrs)
	if n == 0 {
		r.mu.Unlock()
		return false, nil
	}
	state := r.groupStates[r.currentGroup]
	start := state.index % n
	if start < 0 {
		start += n
	}

	var target string
	found := false
	for i := 1; i <= n; i++ {
		var idx int
		if dir == Forward {
			idx = (start + i) % n
		} else {
			idx = ((start-i)%n + n) % n
		}
		candidate := addrs[idx]
		if !haveActive || candidate != active.Address {
			target = candidate
			state.index = idx
			found = true
			break
		}
	}
	r.mu.Unlock()

	if !found {
		return false, nil
	}
	if err := r.controller.Focus(ctx, target); err != nil {
		return false, err
	}
	return true, nil
}

// CycleGroup advances currentGroup to the next name in groupOrders, modulo
// wrap. No-op if there are no groups.
func (r *PinRegistry) CycleGroup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.groupOrders)
	if n == 0 {
		return
	}
	if !r.hasCurrent {
		r.currentGroup = r.groupOrders[0]
		r.hasCurrent = true
		return
	}
	for i, name := range r.groupOrders {
		if name == r.currentGroup {
			r.currentGroup = r.groupOrders[(i+1)%n]
			return
		}
	}
	r.currentGroup = r.groupOrders[0]
}

// AddToGroup appends address to group (dedup), creating the group if absent.
func (r *PinRegistry) AddToGroup(group, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[group]; !exists {
		r.groups[group] = nil
		r.groupStates[group] = &groupState{}
		r.groupOrders = append(r.groupOrders, group)
	}
	if !contains(r.groups[group], address) {
		r.groups[group] = append(r.groups[group], address)
	}
}

// RemoveFromGroup removes address from group, if present.
func (r *PinRegistry) RemoveFromGroup(group, address string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs, exists := r.groups[group]
	if !exists {
		return
	}
	out := addrs[:0]
	for _, a := range addrs {
		if a != address {
			out = append(out, a)
		}
	}
	r.groups[group] = out
	if state, ok := r.groupStates[group]; ok && len(out) > 0 {
		state.index = state.index % len(out)
	}
}

// ClearGroup removes every address from group without deleting it.
func (r *PinRegistry) ClearGroup(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[group]; exists {
		r.groups[group] = nil
		r.groupStates[group] = &groupState{}
	}
}

// DeleteGroup removes group entirely. Deleting the current group clears
// currentGroup.
func (r *PinRegistry) DeleteGroup(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.groups, group)
	delete(r.groupStates, group)
	for i, name := range r.groupOrders {
		if name == group {
			r.groupOrders = append(r.groupOrders[:i], r.groupOrders[i+1:]...)
			break
		}
	}
	if r.hasCurrent && r.currentGroup == group {
		r.currentGroup = ""
		r.hasCurrent = false
	}
}

// ListGroups returns group names in cycle order.
func (r *PinRegistry) ListGroups() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.groupOrders))
	copy(out, r.groupOrders)
	return out
}

// ListWindows returns the addresses pinned in group, in insertion order.
func (r *PinRegistry) ListWindows(group string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := r.groups[group]
	out := make([]string, len(addrs))
	copy(out, addrs)
	return out
}

// CurrentGroup returns the active group name and whether one is set.
func (r *PinRegistry) CurrentGroup() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentGroup, r.hasCurrent
}

func contains(addrs []string, addr string) bool {
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}
	return false
}
