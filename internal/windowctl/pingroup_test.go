package windowctl

import (
	"context"
	"testing"
	"time"

	"hypr-layoutd/internal/cache"
)

func newTestRegistry(ft *fakeTransport, notifications *[]string) *PinRegistry {
	c := New(ft, cache.New(time.Minute))
	notify := func(msg string) {
		if notifications != nil {
			*notifications = append(*notifications, msg)
		}
	}
	return NewPinRegistry(c, notify)
}

func TestPinRegistry_CreateGroupGeneratesUniqueName(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	a := r.CreateGroup("")
	b := r.CreateGroup("")
	if a == "" || b == "" || a == b {
		t.Fatalf("expected distinct generated names, got %q and %q", a, b)
	}
	if got, _ := r.CurrentGroup(); got != b {
		t.Fatalf("CurrentGroup = %q, want %q", got, b)
	}
}

func TestPinRegistry_CreateGroupIdempotentOnExistingName(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CreateGroup("work")
	r.AddToGroup("work", "0xA")

	got := r.CreateGroup("work")
	if got != "work" {
		t.Fatalf("CreateGroup(existing) = %q, want %q", got, "work")
	}
	if windows := r.ListWindows("work"); len(windows) != 1 || windows[0] != "0xA" {
		t.Fatalf("existing group contents mutated: %v", windows)
	}
}

func TestPinRegistry_PinCurrentWindowCreatesDefaultGroup(t *testing.T) {
	ft := newFakeTransport()
	ft.responses["activewindow"] = []byte(`{"address":"0x1","class":"kitty","at":[0,0],"size":[1,1],"workspace":{"id":1}}`)
	var notes []string
	r := newTestRegistry(ft, &notes)

	if err := r.PinCurrentWindow(context.Background()); err != nil {
		t.Fatalf("PinCurrentWindow: %v", err)
	}
	group, ok := r.CurrentGroup()
	if !ok || group != defaultGroupName {
		t.Fatalf("CurrentGroup = %q, %v, want %q", group, ok, defaultGroupName)
	}
	if windows := r.ListWindows(group); len(windows) != 1 || windows[0] != "0x1" {
		t.Fatalf("ListWindows = %v", windows)
	}
	if len(notes) != 1 || notes[0] != "Lock window kitty" {
		t.Fatalf("notifications = %v", notes)
	}
}

func TestPinRegistry_PinCurrentWindowDedupsAndRecordsClass(t *testing.T) {
	ft := newFakeTransport()
	ft.responses["activewindow"] = []byte(`{"address":"0x1","class":"kitty","at":[0,0],"size":[1,1],"workspace":{"id":1}}`)
	r := newTestRegistry(ft, nil)

	r.PinCurrentWindow(context.Background())
	r.PinCurrentWindow(context.Background())

	group, _ := r.CurrentGroup()
	if windows := r.ListWindows(group); len(windows) != 1 {
		t.Fatalf("expected dedup, got %v", windows)
	}
}

func TestPinRegistry_PinCurrentWindowNoActiveWindowErrors(t *testing.T) {
	ft := newFakeTransport()
	ft.responses["activewindow"] = []byte(`{"address":""}`)
	r := newTestRegistry(ft, nil)

	if err := r.PinCurrentWindow(context.Background()); err == nil {
		t.Fatal("expected error when no active window")
	}
}

func TestPinRegistry_ToggleWithinGroupFindsDifferentWindow(t *testing.T) {
	ft := newFakeTransport()
	ft.responses["activewindow"] = []byte(`{"address":"0xA","class":"a","at":[0,0],"size":[1,1],"workspace":{"id":1}}`)
	r := newTestRegistry(ft, nil)
	r.CreateGroup("g")
	r.AddToGroup("g", "0xA")
	r.AddToGroup("g", "0xB")
	r.AddToGroup("g", "0xC")

	ok, err := r.ToggleWithinGroup(context.Background(), Forward)
	if err != nil || !ok {
		t.Fatalf("ToggleWithinGroup = %v, %v", ok, err)
	}
	if ft.calls["dispatch focuswindow address:0xB"] != 1 {
		t.Fatalf("expected focus on 0xB, calls = %v", ft.calls)
	}
}

func TestPinRegistry_ToggleWithinGroupNoneWhenAllSameAddress(t *testing.T) {
	ft := newFakeTransport()
	ft.responses["activewindow"] = []byte(`{"address":"0xA","class":"a","at":[0,0],"size":[1,1],"workspace":{"id":1}}`)
	r := newTestRegistry(ft, nil)
	r.CreateGroup("g")
	r.AddToGroup("g", "0xA")

	ok, err := r.ToggleWithinGroup(context.Background(), Forward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when group has no different window")
	}
}

func TestPinRegistry_ToggleWithinGroupWrapsBackward(t *testing.T) {
	ft := newFakeTransport()
	ft.responses["activewindow"] = []byte(`{"address":"0xA","class":"a","at":[0,0],"size":[1,1],"workspace":{"id":1}}`)
	r := newTestRegistry(ft, nil)
	r.CreateGroup("g")
	r.AddToGroup("g", "0xA")
	r.AddToGroup("g", "0xB")
	r.AddToGroup("g", "0xC")

	ok, err := r.ToggleWithinGroup(context.Background(), Backward)
	if err != nil || !ok {
		t.Fatalf("ToggleWithinGroup = %v, %v", ok, err)
	}
	if ft.calls["dispatch focuswindow address:0xC"] != 1 {
		t.Fatalf("expected focus on 0xC (wrapped backward), calls = %v", ft.calls)
	}
}

func TestPinRegistry_CycleGroupAdvancesAndWraps(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CreateGroup("a")
	r.CreateGroup("b")
	r.CreateGroup("c")
	r.CreateGroup("a") // back to current = "a" via idempotent create

	r.CycleGroup()
	if got, _ := r.CurrentGroup(); got != "b" {
		t.Fatalf("after CycleGroup, CurrentGroup = %q, want %q", got, "b")
	}
	r.CycleGroup()
	if got, _ := r.CurrentGroup(); got != "c" {
		t.Fatalf("after CycleGroup, CurrentGroup = %q, want %q", got, "c")
	}
	r.CycleGroup()
	if got, _ := r.CurrentGroup(); got != "a" {
		t.Fatalf("CycleGroup did not wrap, got %q", got)
	}
}

func TestPinRegistry_CycleGroupNoOpWhenEmpty(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CycleGroup()
	if _, ok := r.CurrentGroup(); ok {
		t.Fatal("expected no current group")
	}
}

func TestPinRegistry_DeleteCurrentGroupClearsCurrent(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CreateGroup("g")
	r.DeleteGroup("g")

	if _, ok := r.CurrentGroup(); ok {
		t.Fatal("expected currentGroup cleared after deleting it")
	}
	for _, name := range r.ListGroups() {
		if name == "g" {
			t.Fatal("deleted group still present in ListGroups")
		}
	}
}

func TestPinRegistry_RemoveFromGroup(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CreateGroup("g")
	r.AddToGroup("g", "0xA")
	r.AddToGroup("g", "0xB")
	r.RemoveFromGroup("g", "0xA")

	windows := r.ListWindows("g")
	if len(windows) != 1 || windows[0] != "0xB" {
		t.Fatalf("ListWindows after remove = %v", windows)
	}
}

func TestPinRegistry_ClearGroupEmptiesButKeepsGroup(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CreateGroup("g")
	r.AddToGroup("g", "0xA")
	r.ClearGroup("g")

	if windows := r.ListWindows("g"); len(windows) != 0 {
		t.Fatalf("expected empty group after Clear, got %v", windows)
	}
	found := false
	for _, name := range r.ListGroups() {
		if name == "g" {
			found = true
		}
	}
	if !found {
		t.Fatal("ClearGroup should not delete the group itself")
	}
}

func TestPinRegistry_ListGroupsPreservesCycleOrder(t *testing.T) {
	r := newTestRegistry(newFakeTransport(), nil)
	r.CreateGroup("first")
	r.CreateGroup("second")
	r.CreateGroup("third")

	got := r.ListGroups()
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("ListGroups = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListGroups = %v, want %v", got, want)
		}
	}
}
