// Package hypr implements the compositor IPC transport: connecting to
// the compositor's command and event Unix sockets, framing requests,
// and reconnecting the event stream with bounded backoff.
package hypr

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// maxSocketPathLen is the point past which Unix socket path length
	// becomes a real risk (sockaddr_un.sun_path is bounded, commonly to
	// 108 bytes including the NUL terminator on Linux); 92 bytes is the
	// threshold that triggers the symlink shortcut below.
	maxSocketPathLen = 92

	commandSocketName = ".socket.sock"
	eventSocketName   = ".socket2.sock"

	shortLinkPrefix = "/tmp/.eva-controller-"
)

// SocketDir resolves the compositor's per-instance runtime directory:
//  1. If XDG_RUNTIME_DIR and HYPRLAND_INSTANCE_SIGNATURE are set and
//     <XDG_RUNTIME_DIR>/hypr/<SIG> exists, use that.
//  2. Otherwise fall back to /tmp/hypr/<SIG>.
func SocketDir() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("%w: HYPRLAND_INSTANCE_SIGNATURE is unset", ErrUnavailable)
	}

	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		candidate := filepath.Join(runtimeDir, "hypr", sig)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	return filepath.Join("/tmp/hypr", sig), nil
}

// SocketPaths resolves the command and event socket paths for dir,
// applying the symlink shortcut when the full path would exceed
// maxSocketPathLen bytes (Unix socket paths are length-bounded).
func SocketPaths(dir string) (commandPath, eventPath string, err error) {
	commandPath, err = shortenIfNeeded(filepath.Join(dir, commandSocketName))
	if err != nil {
		return "", "", err
	}
	eventPath, err = shortenIfNeeded(filepath.Join(dir, eventSocketName))
	if err != nil {
		return "", "", err
	}
	return commandPath, eventPath, nil
}

// shortenIfNeeded creates a symlink under /tmp and returns its path when
// path is too long for a Unix socket address; otherwise it returns path
// unchanged.
func shortenIfNeeded(path string) (string, error) {
	if len(path) <= maxSocketPathLen {
		return path, nil
	}

	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	link := shortLinkPrefix + sig + "-" + filepath.Base(path)

	if existing, err := os.Readlink(link); err == nil {
		if existing == path {
			return link, nil
		}
		if err := os.Remove(link); err != nil {
			return "", fmt.Errorf("replace stale socket symlink %s: %w", link, err)
		}
	}

	if err := os.Symlink(path, link); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("create short socket symlink %s -> %s: %w", link, path, err)
	}
	return link, nil
}
