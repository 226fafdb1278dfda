package stagectl

import "hypr-layoutd/internal/windowctl"

// DefaultGroupSize is the maximum chunk size when composing window
// groups.
const DefaultGroupSize = 10

// createWindowGroups chunks clients into groups of up to size windows each,
// preserving compositor order (focus-history + creation order). Within
// each chunk the first window becomes the group's main, the rest its side
// windows.
func createWindowGroups(clients []windowctl.Window, size int) []WindowGroup {
	if size <= 0 {
		size = DefaultGroupSize
	}
	if len(clients) == 0 {
		return nil
	}

	groups := make([]WindowGroup, 0, (len(clients)+size-1)/size)
	for start := 0; start < len(clients); start += size {
		end := start + size
		if end > len(clients) {
			end = len(clients)
		}
		chunk := clients[start:end]
		groups = append(groups, WindowGroup{
			Main: chunk[0],
			Side: append([]windowctl.Window(nil), chunk[1:]...),
		})
	}
	return groups
}
