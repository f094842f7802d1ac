package feed

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/gyroflick/gyroflick/internal/log"
	"github.com/gyroflick/gyroflick/shaper"
)

// ServerConfig configures the frame feed server.
type ServerConfig struct {
	Addr string `help:"Feed server listen address." default:":4313" env:"GYROFLICK_ADDR"`
	Key  string `help:"Pre-shared key; when set, connections are encrypted and authenticated." env:"GYROFLICK_KEY"`
}

// Server accepts TCP connections streaming fixed-size input frames and
// answers each frame with the pipeline's result. Every connection gets its
// own Session, so concurrent clients never share shaping state.
type Server struct {
	config    ServerConfig
	settings  shaper.Settings
	logger    *slog.Logger
	rawLogger log.RawLogger
	ready     chan struct{}
	readyOnce sync.Once
	ln        net.Listener
}

// NewServer builds a server; every accepted connection gets a pipeline with
// the given settings. rawLogger may be nil.
func NewServer(config ServerConfig, settings shaper.Settings, logger *slog.Logger, rawLogger log.RawLogger) *Server {
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	return &Server{
		config:    config,
		settings:  settings,
		logger:    logger,
		rawLogger: rawLogger,
		ready:     make(chan struct{}),
	}
}

// ListenAndServe starts the feed server and handles incoming connections
// until the listener is closed.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("feed server listening", "addr", s.config.Addr)
	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || strings.Contains(strings.ToLower(err.Error()), "use of closed network connection") {
				s.logger.Info("feed server stopped")
				return nil
			}
			s.logger.Error("accept error", "error", err)
			continue
		}
		s.logger.Info("client connected", "remote", c.RemoteAddr())
		go func() {
			if err := s.handleConn(c); err != nil {
				s.logger.Error("connection handler error", "error", err)
			} else {
				s.logger.Info("client disconnected", "remote", c.RemoteAddr())
			}
		}()
	}
}

// Ready returns a channel closed once the server has bound its listen
// address.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound listener address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the server by closing its listener.
func (s *Server) Close() error {
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) handleConn(conn net.Conn) error {
	defer conn.Close()

	if s.config.Key != "" {
		wrapped, err := wrapConn(conn, s.config.Key)
		if err != nil {
			return err
		}
		conn = wrapped
	}

	session := NewSession(s.settings)

	buf := make([]byte, FrameSize)
	for {
		if _, err := io.ReadFull(conn, buf); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		s.rawLogger.Log(true, buf)

		var frame Frame
		if err := frame.UnmarshalBinary(buf); err != nil {
			return err
		}

		result := session.Apply(frame)
		out, err := result.MarshalBinary()
		if err != nil {
			return err
		}
		s.rawLogger.Log(false, out)
		if _, err := conn.Write(out); err != nil {
			return err
		}
	}
}
