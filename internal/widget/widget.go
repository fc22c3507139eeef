// Package widget is the client side of the résumé chat: an explicit
// visibility/phase state machine that posts the conversation and folds the
// streamed reply into a history log.
package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"portfolio/internal/chat"
	"portfolio/internal/history"
	"portfolio/internal/sse"
)

// IterationBreak separates text the assistant produced before a tool call
// from the text that follows it.
const IterationBreak = "\n\n"

const Greeting = "Welcome, Recruiter! Ask about skills, experience, or qualifications..."

type Visibility int

const (
	Closed Visibility = iota
	Open
)

func (v Visibility) String() string {
	if v == Open {
		return "open"
	}
	return "closed"
}

type Phase int

const (
	Idle Phase = iota
	Sending
	Streaming
)

func (p Phase) String() string {
	switch p {
	case Sending:
		return "sending"
	case Streaming:
		return "streaming"
	default:
		return "idle"
	}
}

var (
	ErrClosed     = errors.New("widget is closed")
	ErrBusy       = errors.New("a reply is still in progress")
	ErrEmptyInput = errors.New("input is empty")
)

// ServerError is a failure reported by the chat endpoint, either as a
// non-2xx answer or as an error chunk in the stream.
type ServerError struct {
	StatusCode int
	Title      string
	Message    string
}

func (e *ServerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat endpoint %d: %s: %s", e.StatusCode, e.Title, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

type Options struct {
	// Endpoint is the full URL of the chat endpoint.
	Endpoint   string
	HTTPClient *http.Client
	Provider   string
	Model      string
	// OnDelta observes each content delta as it is appended.
	OnDelta func(delta string)
	// OnToolCall observes each tool the assistant invokes.
	OnToolCall func(name string)
}

type Widget struct {
	opts Options
	log  *history.Log

	mu         sync.Mutex
	visibility Visibility
	phase      Phase
	input      string
}

func New(opts Options) *Widget {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Widget{opts: opts, log: history.New()}
}

func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visibility = Open
}

// Close hides the widget. A reply in progress keeps streaming.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.visibility = Closed
}

func (w *Widget) Toggle() Visibility {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.visibility == Open {
		w.visibility = Closed
	} else {
		w.visibility = Open
	}
	return w.visibility
}

func (w *Widget) SetInput(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = s
}

func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

func (w *Widget) Visibility() Visibility {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visibility
}

func (w *Widget) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Messages returns the conversation in display order.
func (w *Widget) Messages() []chat.ChatMessage {
	return w.log.All()
}

// Reset drops the conversation. It is refused while a reply is in progress.
func (w *Widget) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != Idle {
		return ErrBusy
	}
	w.log.Reset()
	return nil
}

// Placeholder is the text shown when the conversation is empty.
func (w *Widget) Placeholder() string {
	if w.log.Len() > 0 {
		return ""
	}
	return Greeting
}

func (w *Widget) setPhase(p Phase) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = p
}

// Send submits the current input. It is only accepted while the widget is
// open and idle with non-blank input, and returns once the reply has ended.
func (w *Widget) Send(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.visibility != Open:
		w.mu.Unlock()
		return ErrClosed
	case w.phase != Idle:
		w.mu.Unlock()
		return ErrBusy
	case strings.TrimSpace(w.input) == "":
		w.mu.Unlock()
		return ErrEmptyInput
	}
	text := strings.TrimSpace(w.input)
	w.input = ""
	w.phase = Sending
	w.mu.Unlock()
	defer w.setPhase(Idle)

	w.log.AppendUser(uuid.NewString(), text)
	if err := w.exchange(ctx); err != nil {
		if ctx.Err() == nil {
			w.log.AppendNotice(uuid.NewString(), "["+err.Error()+"]")
		}
		return err
	}
	return nil
}

func (w *Widget) exchange(ctx context.Context) error {
	body := chat.Request{Messages: w.log.Context()}
	if w.opts.Provider != "" || w.opts.Model != "" {
		body.Data = &chat.RequestData{Provider: w.opts.Provider, Model: w.opts.Model}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := w.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var info chat.ErrorInfo
		_ = json.NewDecoder(resp.Body).Decode(&info)
		if info.Error == "" {
			info.Error = resp.Status
		}
		return &ServerError{StatusCode: resp.StatusCode, Title: info.Error, Message: info.Message}
	}

	replyID := ""
	hasText, breakPending := false, false
	var streamErr error
	errDone := errors.New("done")
	err = sse.Read(ctx, resp.Body, func(_, data string) error {
		if data == sse.DoneMarker {
			return errDone
		}
		var c chat.Chunk
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return fmt.Errorf("decode chunk: %w", err)
		}
		if replyID == "" {
			replyID = uuid.NewString()
			w.log.StartAssistant(replyID)
			w.setPhase(Streaming)
		}
		switch c.Type {
		case chat.ChunkContent:
			if c.Delta == "" {
				break
			}
			delta := c.Delta
			if breakPending {
				delta = IterationBreak + delta
				breakPending = false
			}
			hasText = true
			w.log.AppendDelta(replyID, delta)
			if w.opts.OnDelta != nil {
				w.opts.OnDelta(delta)
			}
		case chat.ChunkToolCall:
			breakPending = hasText
			if c.ToolCall != nil && w.opts.OnToolCall != nil {
				w.opts.OnToolCall(c.ToolCall.Name)
			}
		case chat.ChunkError:
			if c.Error != nil && streamErr == nil {
				streamErr = &ServerError{Title: c.Error.Error, Message: c.Error.Message}
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDone) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("read chat stream: %w", err)
	}
	return streamErr
}
