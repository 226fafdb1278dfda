package control

import (
	"context"
	"encoding/json"
	"fmt"

	"hypr-layoutd/internal/windowctl"
)

// Mode names which controller a strategy is primarily driving. It is
// documentation only: nothing reads it, and it does not gate which fields
// of Deps a strategy may touch.
type Mode string

const (
	ModeWindow Mode = "window"
	ModeLayout Mode = "layout"
)

// Strategy is one control-socket command's behavior.
type Strategy struct {
	Mode        Mode
	Description string
	Run         func(ctx context.Context, deps Deps, args []string) ([]byte, error)
}

// Strategies is the closed set of control-socket commands, keyed by name.
var Strategies = map[string]Strategy{
	"toggle": {
		Mode:        ModeWindow,
		Description: "Toggle focus between the active window and the last-focused window of a given class",
		Run:         runToggle,
	},
	"lockpin": {
		Mode:        ModeWindow,
		Description: "Pin the active window into the current pin-group",
		Run:         runLockpin,
	},
	"get_actions": {
		Mode:        ModeWindow,
		Description: "List every control command and its description",
	},
	"toggle-lock": {
		Mode:        ModeWindow,
		Description: "Cycle within the current pin-group (direction: forward|backward)",
		Run:         runToggleLock,
	},
	"switch-group": {
		Mode:        ModeWindow,
		Description: "Cycle the active pin-group",
		Run:         runSwitchGroup,
	},
	"pin": {
		Mode:        ModeWindow,
		Description: "Add the active window to a named pin-group",
		Run:         runPin,
	},
	"generate-lock": {
		Mode:        ModeWindow,
		Description: "Create a new pin-group with an optional name",
		Run:         runGenerateLock,
	},
	"toggle-float": {
		Mode:        ModeLayout,
		Description: "Toggle the active workspace between tiled and floating layout",
		Run:         runToggleFloat,
	},
	"estage": {
		Mode:        ModeLayout,
		Description: "Toggle the active workspace between tiled and stage-manager layout",
		Run:         runEstage,
	},
	"cycle-stage": {
		Mode:        ModeLayout,
		Description: "Promote the next side window to main in the active stage group",
		Run:         runCycleStage,
	},
}

// get_actions reads Strategies itself, so its Run is attached here rather
// than in the literal above, which would be an initialization cycle.
func init() {
	s := Strategies["get_actions"]
	s.Run = runGetActions
	Strategies["get_actions"] = s
}

func runToggle(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: toggle requires a class argument", ErrMissingInput)
	}
	class := args[0]

	active, ok := deps.Windows.GetActiveWindow(ctx)
	if ok && active.Class == class {
		if prev, found := deps.Focus.Previous(active.Address); found {
			return nil, deps.Windows.Focus(ctx, prev)
		}
		return nil, nil
	}

	addr, found := deps.Windows.GetWindowByClass(ctx, class)
	if !found {
		return nil, nil
	}
	if ok {
		deps.Focus.Push(active.Class, active.Address)
	}
	return nil, deps.Windows.Focus(ctx, addr)
}

func runLockpin(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	return nil, deps.Pins.PinCurrentWindow(ctx)
}

func runGetActions(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	out := make(map[string]string, len(Strategies))
	for name, s := range Strategies {
		out[name] = s.Description
	}
	return json.Marshal(out)
}

func runToggleLock(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	dir := windowctl.Forward
	if len(args) > 0 && args[0] == "backward" {
		dir = windowctl.Backward
	}
	_, err := deps.Pins.ToggleWithinGroup(ctx, dir)
	return nil, err
}

func runSwitchGroup(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	deps.Pins.CycleGroup()
	return nil, nil
}

func runPin(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: pin requires a group name and a window class", ErrMissingInput)
	}
	group := args[0]
	active, ok := deps.Windows.GetActiveWindow(ctx)
	if !ok {
		return nil, nil
	}
	// The classname argument is accepted but unused: pin always records the
	// active window's address, matching the behavior this command was
	// modeled on.
	deps.Pins.AddToGroup(group, active.Address)
	return nil, nil
}

func runGenerateLock(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	deps.Pins.CreateGroup(name)
	return nil, nil
}

func runToggleFloat(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	return nil, deps.Layout.ToggleFloatMode(ctx)
}

func runEstage(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	return nil, deps.Stage.ToggleLayoutMode(ctx)
}

func runCycleStage(ctx context.Context, deps Deps, args []string) ([]byte, error) {
	return nil, deps.Stage.CycleMainWindow(ctx)
}
