// Package server implements the line-oriented TCP command protocol.
//
// DESIGN: One goroutine per accepted connection so one client's billing
// latency never delays another's. A connection carries exactly one exchange:
// read one newline-terminated command within the read window, answer, close.
// The only command is STATUS (case-insensitive); anything else gets the
// error token. Clients never see a raw error message or a hung connection.
//
// No auth, TLS, or rate limiting on this port: trusted-network use only.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/spendwatch/spendwatch/internal/config"
	"github.com/spendwatch/spendwatch/internal/monitoring"
)

// Protocol tokens. The error token is a single defined line, matching what
// deployed pollers already expect.
const (
	cmdStatus   = "STATUS"
	respTrue    = "TRUE\n"
	respFalse   = "FALSE\n"
	respUnknown = "ERR Unknown Command\n"
)

// Verdicter produces the cost-incurred verdict for one connection.
type Verdicter interface {
	Evaluate(ctx context.Context, connID string) bool
}

// Server accepts command connections and answers verdicts.
type Server struct {
	cfg  config.ServerConfig
	eval Verdicter

	ln     net.Listener
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
	closed bool
}

// New creates a command server.
func New(cfg config.ServerConfig, eval Verdicter) *Server {
	return &Server{
		cfg:   cfg,
		eval:  eval,
		conns: make(map[net.Conn]struct{}),
	}
}

// Listen binds the listener. Separate from Serve so callers can bind port 0
// and read the assigned address before serving.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	log.Info().Str("addr", ln.Addr().String()).Msg("server: listening")
	return nil
}

// Addr returns the bound listener address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until Shutdown closes the listener.
// Blocks; run it on its own goroutine.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn().Err(err).Msg("server: accept failed")
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Shutdown stops accepting, then waits for in-flight connections up to the
// context deadline. Remaining connections are force-closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for conn := range s.conns {
			_ = conn.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

// handleConn runs one request/response exchange. The connection is closed
// on every path; a slow client or a failing fetch only ever costs this one
// goroutine.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()[:8]
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadWindow()))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		// Idle, half-open, or never sent a full line: close, nothing to answer.
		monitoring.CommandsTotal.WithLabelValues("read_failed").Inc()
		log.Debug().Str("conn_id", connID).Err(err).Msg("server: read failed")
		return
	}

	command := strings.ToUpper(strings.TrimSpace(line))
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout()))

	if command != cmdStatus {
		monitoring.CommandsTotal.WithLabelValues("unknown_command").Inc()
		log.Info().Str("conn_id", connID).Str("command", command).Msg("server: unknown command")
		_, _ = io.WriteString(conn, respUnknown)
		return
	}

	verdict := s.eval.Evaluate(ctx, connID)
	monitoring.CommandsTotal.WithLabelValues("status").Inc()

	resp := respFalse
	if verdict {
		resp = respTrue
	}
	if _, err := io.WriteString(conn, resp); err != nil {
		log.Debug().Str("conn_id", connID).Err(err).Msg("server: write failed")
	}
}
