package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"recordsrv/internal/wire"
)

const (
	DefaultMaxConns      = 256
	DefaultReadTimeout   = 10 * time.Second
	DefaultWriteTimeout  = 10 * time.Second
	DefaultShutdownGrace = 5 * time.Second

	readBufferSize  = 4096
	maxAcceptDelay  = time.Second
	baseAcceptDelay = 5 * time.Millisecond
	lingerTimeout   = 250 * time.Millisecond
	maxLingerBytes  = 256 << 10
)

// AccessLogger records one completed request. *accesslog.Logger satisfies it.
type AccessLogger interface {
	Log(method, path string, status int)
}

// Server accepts TCP connections and serves exactly one request on each.
// Zero-valued limits take the Default* values.
type Server struct {
	Addr           string
	Handler        Handler
	AccessLog      AccessLogger
	Logger         *log.Logger
	MaxConns       int
	MaxRequestSize int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ShutdownGrace  time.Duration

	wg    sync.WaitGroup
	mu    sync.Mutex
	conns map[net.Conn]context.CancelFunc
}

// ListenAndServe binds Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	s.logf("server: listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve runs the accept loop on ln until ctx is cancelled or accept fails
// permanently. At most MaxConns connections are served at once; further
// clients wait in the listen backlog. On cancellation the listener is
// closed, in-flight workers get ShutdownGrace to finish, and stragglers are
// cut off. Serve returns nil after a requested shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.Handler == nil {
		return errors.New("server: nil Handler")
	}
	s.fillDefaults()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	// Workers outlive ctx during the drain; they are cancelled explicitly.
	base := context.WithoutCancel(ctx)
	sem := semaphore.NewWeighted(int64(s.MaxConns))
	var delay time.Duration

	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			return s.drain()
		}
		conn, err := ln.Accept()
		if err != nil {
			sem.Release(1)
			if ctx.Err() != nil {
				return s.drain()
			}
			if transientAcceptError(err) {
				if delay == 0 {
					delay = baseAcceptDelay
				} else {
					delay = min(delay*2, maxAcceptDelay)
				}
				s.logf("server: accept error: %v; retrying in %v", err, delay)
				time.Sleep(delay)
				continue
			}
			_ = ln.Close()
			return fmt.Errorf("accept: %w", err)
		}
		delay = 0

		s.wg.Add(1)
		go func() {
			defer sem.Release(1)
			s.serveConn(base, conn)
		}()
	}
}

// ActiveConns reports how many workers currently own a connection.
func (s *Server) ActiveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) fillDefaults() {
	if s.MaxConns <= 0 {
		s.MaxConns = DefaultMaxConns
	}
	if s.MaxRequestSize <= 0 {
		s.MaxRequestSize = wire.DefaultMaxRequestSize
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.ShutdownGrace <= 0 {
		s.ShutdownGrace = DefaultShutdownGrace
	}
}

func transientAcceptError(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE) || errors.Is(err, syscall.ECONNABORTED)
}

func (s *Server) drain() error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(s.ShutdownGrace):
	}

	s.mu.Lock()
	n := len(s.conns)
	for c, cancel := range s.conns {
		cancel()
		// Unblocks pending I/O; the owning worker still does the Close.
		_ = c.SetDeadline(time.Now())
	}
	s.mu.Unlock()
	s.logf("server: grace period exceeded, cancelled %d connection(s)", n)

	<-done
	return nil
}

func (s *Server) track(c net.Conn, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		s.conns = map[net.Conn]context.CancelFunc{}
	}
	s.conns[c] = cancel
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// serveConn owns conn for its whole life: read one request, dispatch,
// write one response, log, close.
func (s *Server) serveConn(base context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(base)
	connID := uuid.NewString()
	s.track(conn, cancel)
	defer func() {
		if p := recover(); p != nil {
			s.logf("server: conn=%s panic: %v", connID, p)
		}
		s.untrack(conn)
		cancel()
		if err := conn.Close(); err != nil {
			s.logf("server: conn=%s close: %v", connID, err)
		}
		s.wg.Done()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	req, err := wire.ReadRequest(bufio.NewReaderSize(conn, readBufferSize), s.MaxRequestSize)
	if err != nil {
		status, ok := framingStatus(err)
		if !ok {
			if !errors.Is(err, io.EOF) {
				s.logf("server: conn=%s read: %v", connID, err)
			}
			return
		}
		s.respond(conn, connID, wire.Empty(status))
		s.logAccess("-", "-", status)
		discardInput(conn)
		return
	}

	resp := s.Handler.ServeRequest(ctx, req)
	s.respond(conn, connID, resp)
	s.logAccess(req.Method, req.Path, resp.Status)
}

// framingStatus picks the reply for a request that could not be read.
// ok is false when no reply should be attempted.
func framingStatus(err error) (int, bool) {
	var ne net.Error
	switch {
	case errors.Is(err, wire.ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge, true
	case errors.Is(err, wire.ErrMalformedRequest):
		return http.StatusBadRequest, true
	case errors.As(err, &ne) && ne.Timeout():
		return http.StatusRequestTimeout, true
	}
	return 0, false
}

// discardInput half-closes conn and swallows whatever the client is still
// sending, so closing with unread data does not reset the connection before
// the client has read the response.
func discardInput(conn net.Conn) {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.CloseWrite()
	_ = tc.SetReadDeadline(time.Now().Add(lingerTimeout))
	_, _ = io.Copy(io.Discard, io.LimitReader(tc, maxLingerBytes))
}

func (s *Server) respond(conn net.Conn, connID string, resp *wire.Response) {
	_ = conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	if _, err := resp.WriteTo(conn); err != nil {
		s.logf("server: conn=%s write: %v", connID, err)
	}
}

func (s *Server) logAccess(method, path string, status int) {
	if s.AccessLog != nil {
		s.AccessLog.Log(method, path, status)
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
