// Package daemon runs the responder side: a listener that performs the
// version and capability handshake for each incoming connection, plus an
// admin endpoint exposing health and metrics.
package daemon

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/syncwire/internal/config"
	"github.com/danmuck/syncwire/internal/handshake"
	"github.com/danmuck/syncwire/internal/observability"
	"github.com/danmuck/syncwire/internal/wire"
)

var ErrNotListening = errors.New("daemon: server is not listening")

// SessionRecord is one completed handshake, kept for the admin endpoint.
type SessionRecord struct {
	Remote    string    `json:"remote"`
	Version   int32     `json:"version"`
	Flags     string    `json:"flags"`
	Completed time.Time `json:"completed"`
}

const sessionHistoryLimit = 64

type Server struct {
	cfg config.DaemonConfig

	mu       sync.Mutex
	ln       net.Listener
	closed   bool
	sessions []SessionRecord

	wg sync.WaitGroup
}

func New(cfg config.DaemonConfig) *Server {
	observability.RegisterMetrics()
	return &Server{cfg: cfg}
}

// Listen binds the protocol listener.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Info().Str("addr", ln.Addr().String()).Msg("daemon listening")
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil, ErrNotListening
	}
	return s.ln.Addr(), nil
}

// Serve accepts connections until Close. Each connection gets its own
// goroutine and an independent handshake; sessions never share state.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops the listener and waits for in-flight handshakes.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()
	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	// The handshake layer has no internal timer; a stalled peer is cut off
	// by the connection deadline.
	if s.cfg.HandshakeTimeout.Duration > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.HandshakeTimeout.Duration))
	}

	start := time.Now()
	sess, err := handshake.Negotiate(conn, handshake.Options{
		Role:       handshake.RoleResponder,
		Transport:  handshake.TransportDaemon,
		LocalMax:   s.cfg.LocalMaxVersion,
		Descriptor: s.cfg.CompatDescriptor,
	})
	if err != nil {
		observability.RecordHandshake("responder", "daemon", resultLabel(err), "", time.Since(start))
		log.Warn().Err(err).Str("remote", remote).Msg("handshake failed")
		return
	}

	version := strconv.Itoa(int(sess.Version.Major))
	observability.RecordHandshake("responder", "daemon", "ok", version, time.Since(start))
	log.Info().
		Str("remote", remote).
		Int32("version", sess.Version.Major).
		Str("flags", sess.Flags.String()).
		Msg("session negotiated")

	s.record(SessionRecord{
		Remote:    remote,
		Version:   sess.Version.Major,
		Flags:     sess.Flags.String(),
		Completed: time.Now(),
	})
	_ = conn.SetDeadline(time.Time{})
}

func (s *Server) record(rec SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, rec)
	if len(s.sessions) > sessionHistoryLimit {
		s.sessions = s.sessions[len(s.sessions)-sessionHistoryLimit:]
	}
}

// Sessions snapshots the recent handshake history.
func (s *Server) Sessions() []SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionRecord, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// resultLabel buckets handshake failures for metrics.
func resultLabel(err error) string {
	switch {
	case errors.Is(err, handshake.ErrMalformedGreeting):
		return "malformed_greeting"
	case errors.Is(err, handshake.ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, handshake.ErrBadDescriptor):
		return "bad_descriptor"
	case errors.Is(err, wire.ErrTruncated):
		return "truncated"
	default:
		return "io_error"
	}
}
