// Package types defines shared data structures for the storysmith agent and clients.
package types

import "errors"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleHuman     Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to execute a named tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of resolving one ToolCall. When the call could
// not be resolved, Content carries the error text and IsError is set; the
// loop keeps going so the model can react to the failure.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Message is one entry in a conversation history. Histories are append-only
// within a run; each run owns its own slice.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool-role message back to the ToolCall it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name is the tool name for tool-role messages.
	Name string `json:"name,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// HumanMessage builds a user-role message.
func HumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage builds a tool-role message from a ToolResult.
func ToolMessage(name string, res ToolResult) Message {
	return Message{
		Role:       RoleTool,
		Content:    res.Content,
		ToolCallID: res.CallID,
		Name:       name,
	}
}

// PendingToolCalls reports whether the message is an assistant turn that
// still has unresolved tool calls.
func (m Message) PendingToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

var (
	// ErrInvalidHistory is returned by the router when the last message of a
	// history is not an assistant message.
	ErrInvalidHistory = errors.New("invalid history state: last message is not an assistant message")

	// ErrDivisionByZero is returned by the divide tool for a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUnknownTool is returned when a tool name has no registry entry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrSchemaMismatch is returned when a structured model response does not
	// decode against the requested schema.
	ErrSchemaMismatch = errors.New("response does not match schema")

	// ErrPromptNotFound is returned when the hub has no prompt by that name.
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrMissingVariable is returned when rendering a prompt template without
	// a value for one of its placeholders.
	ErrMissingVariable = errors.New("missing template variable")
)
