// Package graph implements the agent control loop as an explicit finite-state
// machine: Start -> Agent -> {Tools -> Agent, End}. Routing is a pure function
// over the conversation history, not a dynamically dispatched graph.
package graph

import "github.com/sreevatsan/storysmith/internal/types"

// Node identifies a state of the agent loop.
type Node int

const (
	// NodeAgent invokes the bound model once and appends its response.
	NodeAgent Node = iota
	// NodeTools resolves the pending tool calls of the last assistant turn.
	NodeTools
	// NodeEnd terminates the run.
	NodeEnd
)

// String returns a human-readable node name.
func (n Node) String() string {
	names := [...]string{"agent", "tools", "end"}
	if int(n) < len(names) {
		return names[n]
	}
	return "unknown"
}

// Route inspects the last message of a history and decides the next node.
// An assistant message with pending tool calls routes to NodeTools, an
// assistant message without routes to NodeEnd. Any other shape is a
// malformed history and returns types.ErrInvalidHistory. Route has no side
// effects; a fixed history always yields the same decision.
func Route(history []types.Message) (Node, error) {
	if len(history) == 0 {
		return NodeEnd, types.ErrInvalidHistory
	}
	last := history[len(history)-1]
	if last.Role != types.RoleAssistant {
		return NodeEnd, types.ErrInvalidHistory
	}
	if last.PendingToolCalls() {
		return NodeTools, nil
	}
	return NodeEnd, nil
}
