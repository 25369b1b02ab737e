package utils

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
)

// RemoteLogger fans log output out to every TCP client attached to its
// port. The terminal belongs to the UI, so `nc localhost <port>` is how
// logs are tailed while the client runs.
type RemoteLogger struct {
	Port     int
	Listener net.Listener

	mu      sync.Mutex
	clients []net.Conn
}

// NewRemoteLogger starts a TCP listener on the given port.
func NewRemoteLogger(port int) (*RemoteLogger, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("remote logger listen: %w", err)
	}
	rl := &RemoteLogger{
		Port:     ln.Addr().(*net.TCPAddr).Port,
		Listener: ln,
	}
	go rl.acceptClients()
	return rl, nil
}

func (rl *RemoteLogger) acceptClients() {
	for {
		conn, err := rl.Listener.Accept()
		if err != nil {
			return
		}
		rl.mu.Lock()
		rl.clients = append(rl.clients, conn)
		rl.mu.Unlock()
	}
}

// Write implements io.Writer. Clients that fail a write are dropped.
func (rl *RemoteLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	alive := rl.clients[:0]
	for _, conn := range rl.clients {
		if _, err := conn.Write(p); err != nil {
			_ = conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	rl.clients = alive
	return len(p), nil
}

// Logf sends a formatted line to all connected clients.
func (rl *RemoteLogger) Logf(format string, args ...any) {
	_, _ = fmt.Fprintln(rl, fmt.Sprintf(format, args...))
}

func (rl *RemoteLogger) Close() error {
	err := rl.Listener.Close()
	rl.mu.Lock()
	for _, conn := range rl.clients {
		_ = conn.Close()
	}
	rl.clients = nil
	rl.mu.Unlock()
	return err
}

// NewLogger builds the process logger. debug lowers the level so raw
// stanza traffic is visible. With no sinks the logger discards output.
func NewLogger(debug bool, sinks ...io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	switch len(sinks) {
	case 0:
	case 1:
		w = sinks[0]
	default:
		w = io.MultiWriter(sinks...)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
