// Command hyprctl is the thin CLI forwarder to the running hypr-layoutd
// control socket: it sends one action and prints whatever reply comes back.
package main

import (
	"flag"
	"fmt"
	"os"

	"hypr-layoutd/internal/config"
	"hypr-layoutd/internal/control"
)

func main() {
	os.Exit(run())
}

func run() int {
	sockPath := flag.String("socket", "", "control socket path (default: from config.yaml)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hyprctl <action> [args...]")
		return 2
	}
	action, rest := args[0], args[1:]

	path := *sockPath
	if path == "" {
		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "hyprctl: load config: %v\n", err)
			return 1
		}
		path = cfg.ControlSocketPath
	}

	reply, err := control.Send(path, action, rest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hyprctl: %v\n", err)
		return 1
	}
	if len(reply) > 0 {
		os.Stdout.Write(reply)
		if reply[len(reply)-1] != '\n' {
			fmt.Println()
		}
	}
	return 0
}
