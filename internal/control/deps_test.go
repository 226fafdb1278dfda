package control

import "testing"

func TestFocusHistory_PushAndPreviousPopsMostRecent(t *testing.T) {
	h := NewFocusHistory()
	h.Push("kitty", "0x1")
	h.Push("firefox", "0x2")

	addr, ok := h.Previous("0xdead")
	if !ok || addr != "0x2" {
		t.Fatalf("Previous = %q, %v, want 0x2, true", addr, ok)
	}
	addr, ok = h.Previous("0xdead")
	if !ok || addr != "0x1" {
		t.Fatalf("Previous = %q, %v, want 0x1, true", addr, ok)
	}
	_, ok = h.Previous("0xdead")
	if ok {
		t.Fatal("expected no more entries")
	}
}

func TestFocusHistory_BoundedAtTwenty(t *testing.T) {
	h := NewFocusHistory()
	for i := 0; i < 25; i++ {
		h.Push("class", string(rune('a'+i%26)))
	}
	if len(h.entries) != recentFocusStackSize {
		t.Fatalf("stack length = %d, want %d", len(h.entries), recentFocusStackSize)
	}
}
