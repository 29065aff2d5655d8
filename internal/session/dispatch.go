package session

import (
	"strconv"
	"strings"
	"time"

	"github.com/okdaichi/graphd/internal/engine"
	"github.com/okdaichi/graphd/internal/protocol"
)

// handleCommand classifies a CONVERSING-state line against the
// command regexes and dispatches to the engine. Exactly
// one of the protocol.* reply constants or a formatted value line is
// returned; an unmatched line yields protocol.Sorry and stays in
// CONVERSING. Every dispatch is timed and labeled for s.metrics,
// which is a no-op sink when the session was built without one.
func (s *Session) handleCommand(line string) (reply string, terminate bool) {
	if line == protocol.Farewell {
		return "", true
	}

	start := time.Now()
	command, reply := s.dispatchCommand(line)
	s.observe(command, reply, time.Since(start))
	return reply, false
}

func (s *Session) dispatchCommand(line string) (command, reply string) {
	switch {
	case protocol.ReAddNode.MatchString(line):
		m := protocol.ReAddNode.FindStringSubmatch(line)
		return "ADD_NODE", boolReply(s.engine.AddNode(m[1]), protocol.NodeAdded, protocol.ErrNodeExists)

	case protocol.ReAddEdge.MatchString(line):
		m := protocol.ReAddEdge.FindStringSubmatch(line)
		weight, err := strconv.Atoi(m[3])
		if err != nil {
			return "ADD_EDGE", protocol.Sorry
		}
		return "ADD_EDGE", boolReply(s.engine.AddEdge(m[1], m[2], weight), protocol.EdgeAdded, protocol.ErrNodeNotFound)

	case protocol.ReRemoveNode.MatchString(line):
		m := protocol.ReRemoveNode.FindStringSubmatch(line)
		return "REMOVE_NODE", boolReply(s.engine.RemoveNode(m[1]), protocol.NodeRemoved, protocol.ErrNodeNotFound)

	case protocol.ReRemoveEdge.MatchString(line):
		m := protocol.ReRemoveEdge.FindStringSubmatch(line)
		return "REMOVE_EDGE", boolReply(s.engine.RemoveEdge(m[1], m[2]), protocol.EdgeRemoved, protocol.ErrNodeNotFound)

	case protocol.ReShortest.MatchString(line):
		m := protocol.ReShortest.FindStringSubmatch(line)
		cost := s.engine.ShortestPath(m[1], m[2])
		if cost == engine.MissingEndpoint {
			return "SHORTEST_PATH", protocol.ErrNodeNotFound
		}
		return "SHORTEST_PATH", strconv.Itoa(cost)

	case protocol.ReCloserThan.MatchString(line):
		m := protocol.ReCloserThan.FindStringSubmatch(line)
		weight, err := strconv.Atoi(m[1])
		if err != nil {
			return "CLOSER_THAN", protocol.Sorry
		}
		names, ok := s.engine.CloserThan(weight, m[2])
		if !ok {
			return "CLOSER_THAN", protocol.ErrNodeNotFound
		}
		return "CLOSER_THAN", strings.Join(names, ",")

	default:
		return "UNKNOWN", protocol.Sorry
	}
}

// observe reports one command's outcome to s.metrics, if attached.
// outcome is "error" for protocol.Sorry/ErrNodeNotFound/ErrNodeExists
// and "ok" for everything else (including legal empty-string results
// like CLOSER THAN with no qualifying nodes).
func (s *Session) observe(command, reply string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch reply {
	case protocol.Sorry, protocol.ErrNodeNotFound, protocol.ErrNodeExists:
		outcome = "error"
	}
	s.metrics.ObserveCommand(command, outcome, elapsed)
}

// boolReply picks the success or failure reply for an engine operation
// whose only failure mode is "node not found" / "already exists".
func boolReply(ok bool, onSuccess, onFailure string) string {
	if ok {
		return onSuccess
	}
	return onFailure
}
