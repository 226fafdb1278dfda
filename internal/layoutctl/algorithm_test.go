package layoutctl

import (
	"math/rand"
	"testing"
)

var testRect = Rect{OX: 0, OY: 0, SW: 2000, SH: 1000}

func TestFloatingLayout_ZeroWindows(t *testing.T) {
	if got := FloatingLayout(testRect, 0, nil); got != nil {
		t.Fatalf("FloatingLayout(n=0) = %v, want nil", got)
	}
}

func TestFloatingLayout_OneWindowCenteredSixtyPercent(t *testing.T) {
	got := FloatingLayout(testRect, 1, nil)
	if len(got) != 1 {
		t.Fatalf("got %d placements, want 1", len(got))
	}
	p := got[0]
	wantW := round(float64(testRect.SW) * 0.6)
	wantH := round(float64(testRect.SH) * 0.6)
	if p.W != wantW || p.H != wantH {
		t.Fatalf("size = %dx%d, want %dx%d", p.W, p.H, wantW, wantH)
	}
	centerX := testRect.OX + testRect.SW/2
	centerY := testRect.OY + testRect.SH/2
	if p.X+p.W/2 != centerX || p.Y+p.H/2 != centerY {
		t.Fatalf("placement %+v not centered on (%d,%d)", p, centerX, centerY)
	}
}

func TestFloatingLayout_TwoWindowsStackedWithOverlap(t *testing.T) {
	got := FloatingLayout(testRect, 2, nil)
	if len(got) != 2 {
		t.Fatalf("got %d placements, want 2", len(got))
	}
	top, bottom := got[0], got[1]
	if top.X != bottom.X {
		t.Fatalf("expected same x (stacked through centerline), got %d vs %d", top.X, bottom.X)
	}
	if top.Y+top.H <= bottom.Y {
		t.Fatalf("expected vertical overlap: top=%+v bottom=%+v", top, bottom)
	}

	wantW := round(float64(testRect.SW) * 0.5)
	wantH := round(float64(testRect.SH) * 0.5)
	overlap := wantW / 10
	anchorX := testRect.OX + (testRect.SW-wantW)/2
	anchorY := testRect.OY + (testRect.SH-wantH)/2
	wantTop := Placement{X: anchorX, Y: anchorY - overlap, W: wantW, H: wantH}
	wantBottom := Placement{X: anchorX, Y: anchorY + overlap, W: wantW, H: wantH}
	if top != wantTop {
		t.Fatalf("top = %+v, want %+v", top, wantTop)
	}
	if bottom != wantBottom {
		t.Fatalf("bottom = %+v, want %+v", bottom, wantBottom)
	}
}

func TestFloatingLayout_ThreeWindowsBackAndCenterSizes(t *testing.T) {
	got := FloatingLayout(testRect, 3, nil)
	if len(got) != 3 {
		t.Fatalf("got %d placements, want 3", len(got))
	}
	back1, back2, center := got[0], got[1], got[2]
	wantBack := round(float64(testRect.SW) * 0.45)
	wantBackH := round(float64(testRect.SH) * 0.45)
	wantCenter := round(float64(testRect.SW) * 0.5)
	if back1.W != wantBack || back2.W != wantBack {
		t.Fatalf("back window widths = %d, %d, want %d", back1.W, back2.W, wantBack)
	}
	if center.W != wantCenter {
		t.Fatalf("center width = %d, want %d (larger than back)", center.W, wantCenter)
	}
	if center.W <= back1.W {
		t.Fatal("center window should be larger than back windows")
	}

	overlap := wantBack / 10
	backAnchorX := testRect.OX + (testRect.SW-wantBack)/2
	backAnchorY := testRect.OY + (testRect.SH-wantBackH)/2
	if back1.X != backAnchorX || back1.Y != backAnchorY-overlap {
		t.Fatalf("back1 = %+v, want x=%d y=%d", back1, backAnchorX, backAnchorY-overlap)
	}
	if back2.X != backAnchorX || back2.Y != backAnchorY+overlap {
		t.Fatalf("back2 = %+v, want x=%d y=%d", back2, backAnchorX, backAnchorY+overlap)
	}
}

func TestFloatingLayout_FourWindowsOneEachCorner(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	got := FloatingLayout(testRect, 4, rng)
	if len(got) != 4 {
		t.Fatalf("got %d placements, want 4", len(got))
	}
	w := round(float64(testRect.SW) * 0.45)
	overlap := w / 10
	// top-left corner: x,y near (0,0) within jitter tolerance
	if abs(got[0].X) > overlap || abs(got[0].Y) > overlap {
		t.Fatalf("expected top-left corner within jitter, got %+v", got[0])
	}
	// bottom-right corner: x+w,y+h near monitor far edge
	br := got[3]
	if abs((br.X+br.W)-testRect.SW) > overlap || abs((br.Y+br.H)-testRect.SH) > overlap {
		t.Fatalf("expected bottom-right corner within jitter, got %+v", br)
	}
}

func TestFloatingLayout_FiveWindowsCenterMinimumSize(t *testing.T) {
	small := Rect{OX: 0, OY: 0, SW: 300, SH: 300}
	rng := rand.New(rand.NewSource(1))
	got := FloatingLayout(small, 5, rng)
	if len(got) != 5 {
		t.Fatalf("got %d placements, want 5", len(got))
	}
	center := got[4]
	if center.W < 400 || center.H < 400 {
		t.Fatalf("center size %dx%d below required minimum 400x400", center.W, center.H)
	}
}

func TestFloatingLayout_FiveWindowsCenterSizedFromCorner(t *testing.T) {
	got := FloatingLayout(testRect, 5, nil)
	if len(got) != 5 {
		t.Fatalf("got %d placements, want 5", len(got))
	}
	w := round(float64(testRect.SW) * 0.4)
	h := round(float64(testRect.SH) * 0.4)
	wantCenterW := max(round(float64(w)*0.8), 400)
	wantCenterH := max(round(float64(h)*0.8), 400)

	center := got[4]
	if center.W != wantCenterW || center.H != wantCenterH {
		t.Fatalf("center size = %dx%d, want %dx%d (80%% of the 40%%-of-monitor corner size, not 80%% of the monitor)", center.W, center.H, wantCenterW, wantCenterH)
	}

	wantAnchor := centered(testRect, wantCenterW, wantCenterH)
	if center.X != wantAnchor.X || center.Y != wantAnchor.Y {
		t.Fatalf("center position = (%d,%d), want (%d,%d)", center.X, center.Y, wantAnchor.X, wantAnchor.Y)
	}
}

func TestFloatingLayout_GridSizeScalesWithCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	got := FloatingLayout(testRect, 9, rng)
	if len(got) != 9 {
		t.Fatalf("got %d placements, want 9", len(got))
	}
	for _, p := range got {
		if p.W <= 0 || p.H <= 0 {
			t.Fatalf("non-positive cell size: %+v", p)
		}
	}
}

func TestFloatingLayout_JitterIsDeterministicForFixedSeed(t *testing.T) {
	a := FloatingLayout(testRect, 4, rand.New(rand.NewSource(99)))
	b := FloatingLayout(testRect, 4, rand.New(rand.NewSource(99)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("placement %d differs across equal seeds: %+v vs %+v", i, a[i], b[i])
		}
	}
}
