package httpengine

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"iotscp/internal/application"
	"iotscp/internal/domain/iotscperr"
)

func deadlineFor(d time.Duration) time.Time {
	return time.Now().Add(d)
}

// Handler answers one request and writes exactly one response through w.
// Returning an error causes a 500 to be written; the connection keeps the
// keep-alive state negotiated for the request. Handlers that need a
// different status should write it themselves and return nil.
type Handler func(w *ResponseWriter, req *Request) error

// Server is a minimal HTTP/1.1 listener: one goroutine accepts
// connections, one goroutine per connection serves requests until the
// peer asks to close, the version is unsupported, or ClientTimeout elapses
// idle.
type Server struct {
	log      application.Logger
	handlers map[string]Handler

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds a Server with the given verb->Handler routing table.
func NewServer(log application.Logger, handlers map[string]Handler) *Server {
	return &Server{log: log, handlers: handlers}
}

// ListenAndServe binds address and serves until ctx is cancelled or the
// listener errors.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Printf("http: listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go s.serve(ctx, conn)
	}
}

func (s *Server) serve(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()
	addr := conn.RemoteAddr().String()
	s.log.Printf("http: connection opened %s", addr)

	for {
		if ctx.Err() != nil {
			return
		}
		_ = conn.SetReadDeadline(deadlineFor(ClientTimeout))
		keepAlive, err := s.handleOne(conn)
		if err != nil {
			if errors.Is(err, iotscperr.ErrNullRequest) {
				s.log.Printf("http: %s sent a null request, closing", addr)
				return
			}
			s.log.Printf("http: error serving %s: %v", addr, err)
			return
		}
		if !keepAlive {
			s.log.Printf("http: connection closed %s", addr)
			return
		}
	}
}

// handleOne reads and answers exactly one request, returning whether the
// connection should stay open for another.
func (s *Server) handleOne(conn net.Conn) (bool, error) {
	req, err := ReadRequest(conn)
	if err != nil {
		switch {
		case errors.Is(err, iotscperr.ErrNullRequest):
			return false, err
		case errors.Is(err, iotscperr.ErrVersionUnsupported):
			w := &ResponseWriter{conn: conn}
			_ = w.WriteGeneric(505)
			return false, nil
		default:
			w := &ResponseWriter{conn: conn}
			_ = w.WriteGeneric(400)
			return false, nil
		}
	}

	w := NewResponseWriter(conn, req)
	handler, ok := s.handlers[req.Method]
	if !ok {
		_ = w.WriteGeneric(501)
		return w.KeepAlive(), nil
	}

	if err := handler(w, req); err != nil {
		s.log.Printf("http: handler error for %s %s: %v", req.Method, req.Path, err)
		_ = w.WriteGeneric(500)
		return w.KeepAlive(), nil
	}
	return w.KeepAlive(), nil
}
