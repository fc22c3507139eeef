package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	Role    string
	Content string
	// ToolCalls is set on assistant messages that requested tools.
	ToolCalls []ToolCall
	// ToolCallID and Name identify the call a tool message answers.
	ToolCallID string
	Name       string
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON object
}

// Tool declares a function the model may call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

type Request struct {
	System   string
	Messages []Message
	Tools    []Tool
}

type Response struct {
	Content          string
	ToolCalls        []ToolCall
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// DeltaFunc receives text fragments in the order the model produces them.
// Returning an error aborts the call.
type DeltaFunc func(delta string) error

type Client interface {
	// Stream runs one model turn. Text is reported through onDelta as it
	// arrives; the returned Response carries the full text and any tool calls.
	Stream(ctx context.Context, req Request, onDelta DeltaFunc) (Response, error)
}
