// Package session implements the per-connection protocol state
// machine: AWAIT_GREETING -> CONVERSING -> TERMINATING, layered over a
// stateless command dispatcher and an idle-read timeout. One Session
// is created per accepted net.Conn; sessions share a single
// *engine.Engine but hold no other shared state.
package session

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okdaichi/graphd/internal/engine"
	"github.com/okdaichi/graphd/internal/protocol"
)

// state is the session's position in the AWAIT_GREETING -> CONVERSING
// -> TERMINATING state machine.
type state int

const (
	stateAwaitGreeting state = iota
	stateConversing
	stateTerminating
)

// DefaultIdleTimeout is the default inactivity timeout: 30s with no
// input data transitions the session to TERMINATING.
const DefaultIdleTimeout = 30 * time.Second

// Metrics receives per-command observations from a Session. A nil
// Metrics is valid and simply observes nothing; *server.metrics
// satisfies this from outside the package without session needing to
// import server (which imports session).
type Metrics interface {
	ObserveCommand(command string, outcome string, duration time.Duration)
}

// Session owns one accepted connection's read loop and protocol state.
// Its Serve method blocks until the connection closes, the client says
// goodbye, or the idle timeout fires; it always leaves the connection
// closed on return.
type Session struct {
	ID        string // server-generated UUID, sent in the opening greeting
	ClientID  string // set once a greeting is accepted; may stay empty
	StartTime time.Time

	conn        net.Conn
	engine      *engine.Engine
	idleTimeout time.Duration
	logger      *slog.Logger
	metrics     Metrics

	state state
}

// WithMetrics attaches a Metrics sink, returning the Session for
// chaining. A nil argument is accepted and simply leaves metrics
// disabled.
func (s *Session) WithMetrics(m Metrics) *Session {
	s.metrics = m
	return s
}

// New constructs a Session for an already-accepted connection. idleTimeout
// of zero uses DefaultIdleTimeout.
func New(conn net.Conn, eng *engine.Engine, idleTimeout time.Duration, logger *slog.Logger) *Session {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:          uuid.NewString(),
		StartTime:   time.Now(),
		conn:        conn,
		engine:      eng,
		idleTimeout: idleTimeout,
		logger:      logger,
		state:       stateAwaitGreeting,
	}
}

// Serve runs the session to completion: greeting, command loop,
// farewell, close. It never returns an error for ordinary disconnects
// (EOF, timeout, explicit BYE) — those are expected exits, not
// failures — but logs transport errors at Error level.
func (s *Session) Serve() {
	defer s.conn.Close()

	logger := s.logger.With("session_id", s.ID)
	logger.Info("session opened", "remote", s.conn.RemoteAddr())

	w := bufio.NewWriter(s.conn)
	r := bufio.NewReader(s.conn)

	if err := s.writeLine(w, protocol.Greeting(s.ID)); err != nil {
		logger.Error("failed to send greeting", "error", err)
		return
	}

	for s.state != stateTerminating {
		line, err := s.readLine(r)
		if err != nil {
			s.handleReadError(logger, err)
			break
		}

		reply, done := s.handleLine(line)
		if reply != "" {
			if err := s.writeLine(w, reply); err != nil {
				logger.Error("failed to write reply", "error", err)
				break
			}
		}
		if done {
			s.state = stateTerminating
		}
	}

	elapsed := time.Since(s.StartTime).Milliseconds()
	farewell := protocol.FarewellReply(s.ClientID, elapsed)
	if err := s.writeLine(w, farewell); err != nil {
		logger.Warn("failed to send farewell", "error", err)
	}

	logger.Info("session closed", "client_id", s.ClientID, "elapsed_ms", elapsed)
}

// handleReadError classifies a read failure and logs it appropriately.
// Every path here leads to TERMINATING; the only question is how loud
// to be about it.
func (s *Session) handleReadError(logger *slog.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Warn("session idle timeout")
	case errors.Is(err, net.ErrClosed):
		logger.Info("connection closed")
	default:
		// Covers io.EOF (client hung up) as well as genuine I/O errors.
		// EOF is the common case and not worth Error severity; anything
		// else still isn't surfaced beyond this session.
		logger.Debug("read loop ended", "error", err)
	}
}

// readLine reads one newline-delimited line, tolerating a trailing
// \r (CRLF), and resets the idle-read deadline before each attempt.
func (s *Session) readLine(r *bufio.Reader) (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Session) writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// handleLine processes one line according to the current FSM state and
// returns the reply to send (if any) and whether the session should
// transition to TERMINATING after sending it.
func (s *Session) handleLine(line string) (reply string, terminate bool) {
	switch s.state {
	case stateAwaitGreeting:
		return s.handleGreeting(line)
	case stateConversing:
		return s.handleCommand(line)
	default:
		return "", true
	}
}

func (s *Session) handleGreeting(line string) (reply string, terminate bool) {
	if line == protocol.Farewell {
		return "", true
	}
	if m := protocol.ReGreeting.FindStringSubmatch(line); m != nil {
		s.ClientID = m[1]
		s.state = stateConversing
		return protocol.GreetingAccepted(s.ClientID), false
	}
	return protocol.Sorry, false
}
