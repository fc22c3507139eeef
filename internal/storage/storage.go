package storage

import "time"

// Event describes one chat run. Message text is never stored.
type Event struct {
	Timestamp        time.Time `json:"timestamp"`
	RequestID        string    `json:"request_id"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	Fallback         bool      `json:"fallback,omitempty"`
	Iterations       int       `json:"iterations"`
	ToolCalls        []string  `json:"tool_calls,omitempty"`
	Outcome          string    `json:"outcome"`
	FinishReason     string    `json:"finish_reason,omitempty"`
	Error            string    `json:"error,omitempty"`
	DurationMS       int64     `json:"duration_ms"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
}

// Recorder persists run events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendEvent(event Event) error
	LoadEvents() ([]Event, error)
}
