package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okdaichi/graphd/internal/engine"
	"github.com/okdaichi/graphd/internal/protocol"
	"github.com/okdaichi/graphd/internal/session"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	srv := New(engine.New(), &Config{ListenAddr: "127.0.0.1:0", IdleTimeout: 200 * time.Millisecond}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv.init()
	srv.listener = ln

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			srv.wg.Add(1)
			go func() {
				defer srv.wg.Done()
				sess := session.New(conn, srv.Engine, srv.Config.idleTimeout(), srv.Logger).WithMetrics(srv.metrics)
				sess.Serve()
			}()
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
	})

	return srv, ln.Addr().String()
}

func TestServer_AcceptsAndServesConnection(t *testing.T) {
	srv, addr := startTestServer(t)
	_ = srv

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)
	greeting, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, greeting, "HI, I AM ")

	_, err = conn.Write([]byte(protocol.Farewell + "\n"))
	require.NoError(t, err)

	farewell, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, farewell, "BYE ,")
}

func TestServer_ShutdownWaitsForSessions(t *testing.T) {
	srv, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)
	_, err = r.ReadString('\n')
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Shutdown(ctx) }()

	_, err = conn.Write([]byte(protocol.Farewell + "\n"))
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return in time")
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg *Config
	assert.Equal(t, DefaultListenAddr, cfg.listenAddr())
	assert.Equal(t, DefaultIdleTimeout, cfg.idleTimeout())
	assert.Equal(t, "", cfg.metricsAddr())

	cfg = &Config{ListenAddr: ":9999", IdleTimeout: 5 * time.Second, MetricsAddr: ":9090"}
	assert.Equal(t, ":9999", cfg.listenAddr())
	assert.Equal(t, 5*time.Second, cfg.idleTimeout())
	assert.Equal(t, ":9090", cfg.metricsAddr())
}
