package control

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
)

const maxRequestBytes = 1024

// Server is the control socket: a Unix listener that parses one request
// per connection and dispatches it to a Strategies entry.
type Server struct {
	path     string
	deps     Deps
	listener net.Listener
}

// NewServer binds a Unix listener at path, removing any stale socket file
// left by a previous instance.
func NewServer(path string, deps Deps) (*Server, error) {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Server{path: path, deps: deps, listener: ln}, nil
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed. The control server has no per-request timeout; each accepted
// connection is handled synchronously before the next Accept.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.handle(ctx, conn)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, maxRequestBytes)
	n, err := bufio.NewReader(conn).Read(buf)
	if err != nil && n == 0 {
		return
	}
	line := string(buf[:n])

	req, ok := ParseRequest(line)
	if !ok {
		return
	}

	strategy, known := Strategies[req.Command]
	if !known {
		slog.Warn("[control] unknown command", "command", req.Command)
		return
	}

	reply, err := strategy.Run(ctx, s.deps, req.Args)
	if err != nil {
		slog.Warn("[control] strategy failed", "command", req.Command, "error", err)
		return
	}
	if len(reply) == 0 {
		return
	}
	if _, err := conn.Write(reply); err != nil {
		slog.Warn("[control] write reply failed", "command", req.Command, "error", err)
	}
}
