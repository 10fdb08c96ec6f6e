package types

import (
	"time"
)

// MsgType represents the type of message
type MsgType string

const (
	// part of the conversation sent back to the model
	MsgType_Msg        MsgType = "msg"
	MsgType_ToolCall   MsgType = "tool_call"
	MsgType_ToolResult MsgType = "tool_result"

	// for logs only
	MsgType_Info       MsgType = "info"
	MsgType_Error      MsgType = "error"
	MsgType_TokenUsage MsgType = "token_usage"
)

func (m MsgType) HistorySendable() bool {
	return m == MsgType_Msg || m == MsgType_ToolCall || m == MsgType_ToolResult
}

// Role represents the role of a message sender
type Role string

const (
	Role_User      Role = "user"
	Role_Assistant Role = "assistant"
	Role_System    Role = "system"
)

// Message represents a message in the chat conversation
type Message struct {
	ID   string  `json:"id,omitempty"`
	Type MsgType `json:"type"`
	// Annotation for Timestamp
	Time  string `json:"time"`
	Role  Role   `json:"role"`
	Model string `json:"model,omitempty"`

	// general content
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`

	// for tool call and tool result
	ToolUseID string `json:"tool_use_id,omitempty"`
	ToolName  string `json:"tool_name,omitempty"`

	// for message token usage record
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`

	// unix timestamp, accurate
	Timestamp int64 `json:"timestamp,omitempty"`
}

func (c Message) TimeFilled() Message {
	if c.Timestamp == 0 {
		now := time.Now()
		c.Timestamp = now.Unix()
		c.Time = now.Format(time.RFC3339)
	} else if c.Time == "" {
		t := time.Unix(c.Timestamp, 0)
		c.Time = t.Format(time.RFC3339)
	}
	return c
}

// Messages represents a slice of messages
type Messages []Message

// TokenUsage represents token usage information
type TokenUsage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// Add adds two TokenUsage together
func (t TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		Input:  t.Input + other.Input,
		Output: t.Output + other.Output,
		Total:  t.Total + other.Total,
	}
}

// EventCallback is called for each message produced during a turn
type EventCallback func(msg Message)

// ToolCall represents a tool call requested by the model
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
	RawArgs   string                 `json:"raw_args"`
	// ArgsError is set when RawArgs failed to parse as JSON. The call
	// must not be executed; the error is fed back as the tool result.
	ArgsError string `json:"args_error,omitempty"`
}

// ToolResult represents the result of a tool execution
type ToolResult struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}
