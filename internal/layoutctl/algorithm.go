// Package layoutctl implements toggle_float_mode and the floating-layout
// placement algorithm.
package layoutctl

import (
	"math"
	"math/rand"
)

// Rect is a monitor (or window) rectangle in compositor pixel coordinates.
type Rect struct {
	OX, OY int // offset
	SW, SH int // size
}

// Placement is one window's target geometry, as consumed by move_and_resize.
type Placement struct {
	X, Y, W, H int
}

// FloatingLayout computes placements for n windows on the given monitor
// rectangle. rng supplies the jitter; pass rand.New with a fixed source
// in tests for deterministic output.
func FloatingLayout(rect Rect, n int, rng *rand.Rand) []Placement {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return layoutOne(rect)
	case n == 2:
		return layoutTwo(rect)
	case n == 3:
		return layoutThree(rect)
	case n == 4:
		return layoutFour(rect, rng)
	case n == 5:
		return layoutFive(rect, rng)
	default:
		return layoutGrid(rect, n, rng)
	}
}

func round(f float64) int {
	return int(math.Round(f))
}

func centered(rect Rect, w, h int) Placement {
	return Placement{
		X: rect.OX + (rect.SW-w)/2,
		Y: rect.OY + (rect.SH-h)/2,
		W: w,
		H: h,
	}
}

func layoutOne(rect Rect) []Placement {
	w := round(float64(rect.SW) * 0.6)
	h := round(float64(rect.SH) * 0.6)
	return []Placement{centered(rect, w, h)}
}

func layoutTwo(rect Rect) []Placement {
	w := round(float64(rect.SW) * 0.5)
	h := round(float64(rect.SH) * 0.5)
	overlap := w / 10
	anchor := centered(rect, w, h)

	top := Placement{X: anchor.X, Y: anchor.Y - overlap, W: w, H: h}
	bottom := Placement{X: anchor.X, Y: anchor.Y + overlap, W: w, H: h}
	return []Placement{top, bottom}
}

func layoutThree(rect Rect) []Placement {
	backW := round(float64(rect.SW) * 0.45)
	backH := round(float64(rect.SH) * 0.45)
	centerW := round(float64(rect.SW) * 0.5)
	centerH := round(float64(rect.SH) * 0.5)
	overlap := backW / 10

	backAnchor := centered(rect, backW, backH)
	back1 := Placement{X: backAnchor.X, Y: backAnchor.Y - overlap, W: backW, H: backH}
	back2 := Placement{X: backAnchor.X, Y: backAnchor.Y + overlap, W: backW, H: backH}
	center := centered(rect, centerW, centerH)

	return []Placement{back1, back2, center}
}

func layoutFour(rect Rect, rng *rand.Rand) []Placement {
	w := round(float64(rect.SW) * 0.45)
	h := round(float64(rect.SH) * 0.45)
	overlap := w / 10

	corners := []Placement{
		{X: rect.OX, Y: rect.OY, W: w, H: h},                             // top-left
		{X: rect.OX + rect.SW - w, Y: rect.OY, W: w, H: h},               // top-right
		{X: rect.OX, Y: rect.OY + rect.SH - h, W: w, H: h},               // bottom-left
		{X: rect.OX + rect.SW - w, Y: rect.OY + rect.SH - h, W: w, H: h}, // bottom-right
	}
	for i := range corners {
		corners[i] = jitterPlacement(corners[i], overlap, rng)
	}
	return corners
}

func layoutFive(rect Rect, rng *rand.Rand) []Placement {
	w := round(float64(rect.SW) * 0.4)
	h := round(float64(rect.SH) * 0.4)
	overlap := w / 10

	corners := []Placement{
		{X: rect.OX, Y: rect.OY, W: w, H: h},
		{X: rect.OX + rect.SW - w, Y: rect.OY, W: w, H: h},
		{X: rect.OX, Y: rect.OY + rect.SH - h, W: w, H: h},
		{X: rect.OX + rect.SW - w, Y: rect.OY + rect.SH - h, W: w, H: h},
	}
	for i := range corners {
		corners[i] = jitterPlacement(corners[i], overlap, rng)
	}

	centerW := max(round(float64(w)*0.8), 400)
	centerH := max(round(float64(h)*0.8), 400)
	center := centered(rect, centerW, centerH)
	center = jitterPlacement(center, overlap, rng)

	return append(corners, center)
}

func layoutGrid(rect Rect, n int, rng *rand.Rand) []Placement {
	g := max(2, round(math.Ceil(math.Sqrt(float64(n-1))))+1)
	cellW := rect.SW / g
	cellH := rect.SH / g
	overlap := cellW / 10

	out := make([]Placement, n)
	for i := 0; i < n; i++ {
		col := i % g
		row := i / g
		p := Placement{
			X: rect.OX + col*cellW,
			Y: rect.OY + row*cellH,
			W: cellW,
			H: cellH,
		}
		out[i] = jitterPlacement(p, overlap, rng)
	}
	return out
}

func jitterPlacement(p Placement, overlap int, rng *rand.Rand) Placement {
	if overlap <= 0 || rng == nil {
		return p
	}
	p.X += jitter(overlap, rng)
	p.Y += jitter(overlap, rng)
	return p
}

func jitter(overlap int, rng *rand.Rand) int {
	return rng.Intn(2*overlap+1) - overlap
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
