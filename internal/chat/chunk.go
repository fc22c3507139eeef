package chat

import (
	"context"
	"errors"
	"sync"
)

type ChunkType string

const (
	ChunkContent    ChunkType = "content"
	ChunkToolCall   ChunkType = "tool_call"
	ChunkToolResult ChunkType = "tool_result"
	ChunkDone       ChunkType = "done"
	ChunkError      ChunkType = "error"
)

const (
	FinishStop          = "stop"
	FinishMaxIterations = "max_iterations"
)

type ToolCallInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ErrorInfo struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Chunk is one unit of the response stream. Content chunks carry the new
// Delta and the text accumulated so far in the current model turn.
type Chunk struct {
	Type         ChunkType     `json:"type"`
	ID           string        `json:"id"`
	Model        string        `json:"model,omitempty"`
	Timestamp    int64         `json:"timestamp"`
	Role         string        `json:"role,omitempty"`
	Delta        string        `json:"delta,omitempty"`
	Content      string        `json:"content,omitempty"`
	ToolCall     *ToolCallInfo `json:"toolCall,omitempty"`
	ToolCallID   string        `json:"toolCallId,omitempty"`
	FinishReason string        `json:"finishReason,omitempty"`
	Error        *ErrorInfo    `json:"error,omitempty"`
}

// Sink consumes chunks in the order they are produced. Send must not be
// called after Close.
type Sink interface {
	Send(Chunk) error
	Close()
}

var ErrSinkClosed = errors.New("chat: sink closed")

// ChannelSink hands chunks from the orchestrator goroutine to a consumer.
// Close marks the end of the stream; cancelling ctx makes pending and
// future sends fail with ErrSinkClosed.
type ChannelSink struct {
	ch   chan Chunk
	done <-chan struct{}
	once sync.Once
}

func NewChannelSink(ctx context.Context, buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Chunk, buffer), done: ctx.Done()}
}

func (s *ChannelSink) Send(c Chunk) error {
	select {
	case <-s.done:
		return ErrSinkClosed
	default:
	}
	select {
	case s.ch <- c:
		return nil
	case <-s.done:
		return ErrSinkClosed
	}
}

func (s *ChannelSink) Close() {
	s.once.Do(func() { close(s.ch) })
}

// Chunks is closed after the producer calls Close.
func (s *ChannelSink) Chunks() <-chan Chunk { return s.ch }
