package engine

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"hypr-layoutd/internal/config"
	"hypr-layoutd/internal/control"
	"hypr-layoutd/internal/hypr"
)

func fakeCompositor(t *testing.T, responses map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	cmdPath := filepath.Join(dir, "cmd.sock")

	ln, err := net.Listen("unix", cmdPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 4096)
				n, err := conn.Read(buf)
				if err != nil {
					return
				}
				text := string(buf[:n])
				for prefix, body := range responses {
					if text == "-j/"+prefix {
						conn.Write(body)
						return
					}
				}
			}()
		}
	}()
	return cmdPath
}

func testConfig(sockPath string) config.Config {
	cfg := config.DefaultConfig()
	cfg.ControlSocketPath = sockPath
	return cfg
}

func TestNewEngine_WiresControllersAndControlServer(t *testing.T) {
	cmdPath := fakeCompositor(t, map[string][]byte{
		"clients":      []byte(`[{"address":"0x1","class":"kitty","at":[0,0],"size":[1,1],"workspace":{"id":1}}]`),
		"monitors":     []byte(`[{"name":"DP-1","width":1920,"height":1080,"x":0,"y":0,"activeWorkspace":{"id":1}}]`),
		"activewindow": []byte(`{"address":"0x1","class":"kitty","at":[0,0],"size":[1,1],"workspace":{"id":1}}`),
	})
	transport := hypr.NewWithPaths(cmdPath, filepath.Join(filepath.Dir(cmdPath), "evt.sock"))

	dir := t.TempDir()
	cfg := testConfig(filepath.Join(dir, "control.sock"))

	eng, err := newEngine(cfg, transport, nil)
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	if eng.Windows() == nil || eng.Pins() == nil || eng.Layout() == nil || eng.Stage() == nil {
		t.Fatal("expected all controllers to be non-nil after construction")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go eng.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	reply, err := control.Send(cfg.ControlSocketPath, "get_actions", nil)
	if err != nil {
		t.Fatalf("Send get_actions: %v", err)
	}
	var actions map[string]string
	if err := json.Unmarshal(reply, &actions); err != nil {
		t.Fatalf("unmarshal get_actions reply: %v", err)
	}
	if len(actions) != len(control.Strategies) {
		t.Fatalf("got %d actions, want %d", len(actions), len(control.Strategies))
	}
}
