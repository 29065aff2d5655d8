// Package server wires internal/session sessions to an accepted TCP
// listener: one goroutine per connection, tracked so Shutdown can wait
// for in-flight sessions to finish, plus an optional side HTTP
// listener exposing /healthz and /metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okdaichi/graphd/internal/engine"
	"github.com/okdaichi/graphd/internal/session"
)

// Server accepts connections on Config.ListenAddr and serves each one
// as a session.Session against a shared engine.Engine. The zero value
// is not usable; construct with New.
type Server struct {
	Config *Config
	Engine *engine.Engine
	Logger *slog.Logger

	health  *StatusHandler
	metrics *metrics

	listener   net.Listener
	httpServer *http.Server

	wg       sync.WaitGroup
	initOnce sync.Once
}

// New returns a Server ready to ListenAndServe. eng must not be nil;
// cfg may be nil to take every default.
func New(eng *engine.Engine, cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Config: cfg,
		Engine: eng,
		Logger: logger,
	}
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		if s.Config == nil {
			s.Config = &Config{}
		}
		s.health = NewStatusHandler()
		s.metrics = newMetrics()
	})
}

// ListenAndServe binds Config.listenAddr() and accepts connections
// until the listener is closed (by Close or Shutdown). It blocks;
// callers typically run it in its own goroutine, as cmd/graphd/main.go
// does.
func (s *Server) ListenAndServe() error {
	s.init()

	ln, err := net.Listen("tcp", s.Config.listenAddr())
	if err != nil {
		return err
	}
	s.listener = ln

	if addr := s.Config.metricsAddr(); addr != "" {
		s.startMetricsServer(addr)
	}

	s.Logger.Info("graph server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			// A listener closed by Shutdown/Close surfaces here as an
			// ordinary, expected exit from the accept loop.
			if isClosedErr(err) {
				s.wg.Wait()
				return nil
			}
			return err
		}

		s.wg.Add(1)
		s.health.IncrementSessions()
		s.metrics.sessionsActive.Inc()
		s.metrics.sessionsTotal.Inc()

		go func() {
			defer s.wg.Done()
			defer s.health.DecrementSessions()
			defer s.metrics.sessionsActive.Dec()

			sess := session.New(conn, s.Engine, s.Config.idleTimeout(), s.Logger).WithMetrics(s.metrics)
			sess.Serve()
		}()
	}
}

func (s *Server) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.health.ServeHTTP)
	mux.HandleFunc("/healthz/live", s.health.ServeLive)
	mux.HandleFunc("/healthz/ready", s.health.ServeReady)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		s.Logger.Info("metrics/health server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("metrics server error", "error", err)
		}
	}()
}

// Shutdown stops accepting new connections and waits for in-flight
// sessions (and the metrics HTTP server, if any) to finish, or for ctx
// to be done, whichever comes first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.init()

	if s.listener != nil {
		_ = s.listener.Close()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
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
		return ctx.Err()
	}
}

// Close closes the listener immediately without waiting for in-flight
// sessions to finish.
func (s *Server) Close() error {
	s.init()
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// isClosedErr reports whether err is the net package's unexported
// "use of closed network connection" error, returned by Accept after
// the listener has been closed. net.ErrClosed wraps it since Go 1.16.
func isClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
