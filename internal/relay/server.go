// Package relay implements the server side of the chat protocol: the
// TCP listener, the per-connection join-then-message state machine, and
// the room registry that performs broadcast fan-out.
package relay

import (
	"context"
	"errors"
	"log"
	"net"
	"time"
)

type Server struct {
	Addr     string
	Registry *Registry
}

func NewServer(addr string, writeTimeout time.Duration) *Server {
	return &Server{
		Addr:     addr,
		Registry: NewRegistry(writeTimeout),
	}
}

// ListenAndServe binds the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	log.Printf("[RELAY] listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, one handler goroutine per connection,
// until ctx is canceled or the listener fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-done:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Printf("[RELAY] accept failed: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}
