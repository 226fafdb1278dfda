package stagectl

import "hypr-layoutd/internal/windowctl"

const (
	mainWidthFrac  = 0.80
	mainHeightFrac = 0.90
	mainLeftGutter = 20

	miniWidthFrac  = 0.18
	miniHeightFrac = 0.24
	miniGap        = 30
)

// Rect is a monitor rectangle in compositor pixel coordinates.
type Rect struct {
	OX, OY int
	SW, SH int
}

// mainPlacement computes the active group's main-window rectangle: flush
// against a fixed left gutter, vertically centered.
func mainPlacement(rect Rect) (x, y, w, h int) {
	w = int(float64(rect.SW) * mainWidthFrac)
	h = int(float64(rect.SH) * mainHeightFrac)
	x = rect.OX + mainLeftGutter
	y = rect.OY + (rect.SH-h)/2
	return x, y, w, h
}

// miniSize returns the fixed mini-window width and height for rect.
func miniSize(rect Rect) (w, h int) {
	return int(float64(rect.SW) * miniWidthFrac), int(float64(rect.SH) * miniHeightFrac)
}

// miniStack returns, for groups with active index a, the concatenation of
// every other group's main window followed by every group's side
// windows in iteration order. Side windows of the active group are
// included too.
func miniStack(groups []WindowGroup, active int) []windowctl.Window {
	var out []windowctl.Window
	for i, g := range groups {
		if i == active {
			continue
		}
		out = append(out, g.Main)
	}
	for _, g := range groups {
		out = append(out, g.Side...)
	}
	return out
}

// rowCapacity returns how many mini rows fit in one column before the next
// mini must start a new column. Row capacity is driven by the mini height
// alone; the vertical gap only affects the step between successive rows.
func rowCapacity(rect Rect, miniH int) int {
	if miniH <= 0 {
		return 1
	}
	rows := (rect.SH - rect.OY) / miniH
	if rows < 1 {
		return 1
	}
	return rows
}

// miniPlacements lays out windows into a grid: fill top-to-bottom in a
// column, start a new column when the row count exceeds capacity.
func miniPlacements(rect Rect, windows []windowctl.Window) []PositionRecord {
	if len(windows) == 0 {
		return nil
	}
	w, h := miniSize(rect)
	capacity := rowCapacity(rect, h)

	out := make([]PositionRecord, len(windows))
	for i, win := range windows {
		col := i / capacity
		row := i % capacity
		out[i] = PositionRecord{
			Address: win.Address,
			X:       rect.OX + col*(w+miniGap),
			Y:       rect.OY + row*(h+miniGap),
			W:       w,
			H:       h,
		}
	}
	return out
}

// nextMiniPosition computes where the next mini (appended after the
// current ledger) should land: advance one row from the last entry,
// wrapping to a new column at capacity.
func nextMiniPosition(rect Rect, ledger []PositionRecord) PositionRecord {
	w, h := miniSize(rect)
	capacity := rowCapacity(rect, h)

	if len(ledger) == 0 {
		return PositionRecord{X: rect.OX, Y: rect.OY, W: w, H: h}
	}
	idx := len(ledger)
	col := idx / capacity
	row := idx % capacity
	return PositionRecord{
		X: rect.OX + col*(w+miniGap),
		Y: rect.OY + row*(h+miniGap),
		W: w,
		H: h,
	}
}
