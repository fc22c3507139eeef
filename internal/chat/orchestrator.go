// Package chat runs the bounded tool-calling loop behind the résumé chat.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio/internal/config"
	"portfolio/internal/llm"
	"portfolio/internal/metrics"
	"portfolio/internal/storage"
)

// DefaultMaxIterations is also the hard upper bound on model calls per run.
const DefaultMaxIterations = 5

// FailureTitle heads every error reported to the browser.
const FailureTitle = "Failed to process chat request"

var ErrAborted = errors.New("chat: request aborted")

type State int

const (
	StateIdle State = iota
	StateSelectingProvider
	StateLooping
	StateCompleted
	StateAborted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelectingProvider:
		return "selecting_provider"
	case StateLooping:
		return "looping"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ClientFactory builds a model client for a provider selection.
type ClientFactory interface {
	Create(ctx context.Context, sel llm.Selection) (llm.Client, error)
}

// Toolbox is the set of tools offered to the model.
type Toolbox interface {
	Definitions() []llm.Tool
	Call(ctx context.Context, name, args string) (string, error)
}

type Options struct {
	SystemPrompt  string
	MaxIterations int
	Recorder      storage.Recorder
	Metrics       *metrics.Metrics
}

type Orchestrator struct {
	cfg           *config.Config
	factory       ClientFactory
	tools         Toolbox
	system        string
	maxIterations int
	recorder      storage.Recorder
	metrics       *metrics.Metrics
	now           func() time.Time
}

func New(cfg *config.Config, factory ClientFactory, tools Toolbox, opts Options) *Orchestrator {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	// MaxIterations may lower the cap but never raise it.
	if opts.MaxIterations <= 0 || opts.MaxIterations > DefaultMaxIterations {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Orchestrator{
		cfg:           cfg,
		factory:       factory,
		tools:         tools,
		system:        opts.SystemPrompt,
		maxIterations: opts.MaxIterations,
		recorder:      opts.Recorder,
		metrics:       opts.Metrics,
		now:           time.Now,
	}
}

// Outcome summarises a finished run.
type Outcome struct {
	RequestID    string
	State        State
	Selection    llm.Selection
	FinishReason string
	Iterations   int
	ToolCalls    []string
	Usage        llm.Response
	Err          error
}

// Session is one chat request bound to a model client.
type Session struct {
	o       *Orchestrator
	id      string
	sel     llm.Selection
	client  llm.Client
	state   State
	started time.Time
}

func (r *Session) ID() string { return r.id }

func (r *Session) State() State { return r.state }

func (r *Session) Selection() llm.Selection { return r.sel }

// Start selects a provider and builds its client for a new session.
// Failures here happen before any output is produced.
func (o *Orchestrator) Start(ctx context.Context, hint llm.Hint) (*Session, error) {
	r := &Session{o: o, id: uuid.NewString(), state: StateIdle, started: o.now()}
	r.state = StateSelectingProvider
	sel, err := llm.Select(o.cfg, hint)
	if err != nil {
		r.state = StateErrored
		o.record(r, Outcome{RequestID: r.id, State: StateErrored, Err: err})
		return nil, fmt.Errorf("select provider: %w", err)
	}
	r.sel = sel
	client, err := o.factory.Create(ctx, sel)
	if err != nil {
		r.state = StateErrored
		o.record(r, Outcome{RequestID: r.id, State: StateErrored, Selection: sel, Err: err})
		return nil, fmt.Errorf("create %s client: %w", sel.Kind, err)
	}
	r.client = client
	log.Printf("chat %s: using %s/%s (fallback=%t)", r.id, sel.Kind, sel.Model, sel.Fallback)
	return r, nil
}

// Fail ends a started session that could not be executed and records it
// as errored.
func (r *Session) Fail(err error) Outcome {
	r.state = StateErrored
	out := Outcome{RequestID: r.id, State: StateErrored, Selection: r.sel, Err: err}
	r.o.record(r, out)
	return out
}

// Run starts a run and executes it. A selection failure is reported to the
// sink as an error chunk.
func (o *Orchestrator) Run(ctx context.Context, messages []llm.Message, hint llm.Hint, sink Sink) Outcome {
	r, err := o.Start(ctx, hint)
	if err != nil {
		defer sink.Close()
		_ = sink.Send(Chunk{Type: ChunkError, ID: uuid.NewString(), Timestamp: o.now().UnixMilli(), Error: &ErrorInfo{Error: FailureTitle, Message: err.Error()}})
		return Outcome{State: StateErrored, Err: err}
	}
	return r.Execute(ctx, messages, sink)
}

// Execute drives the loop: one model call per iteration, tool calls
// dispatched in order, at most MaxIterations calls. The sink is closed on
// return.
func (r *Session) Execute(ctx context.Context, messages []llm.Message, sink Sink) Outcome {
	defer sink.Close()
	out := Outcome{RequestID: r.id, Selection: r.sel}
	defer func() { r.o.record(r, out) }()

	r.state = StateLooping
	conv := make([]llm.Message, len(messages), len(messages)+2*r.o.maxIterations)
	copy(conv, messages)
	defs := r.o.tools.Definitions()

	abort := func() Outcome {
		r.state = StateAborted
		out.State = StateAborted
		out.Err = ErrAborted
		return out
	}

	for iter := 1; iter <= r.o.maxIterations; iter++ {
		if ctx.Err() != nil {
			return abort()
		}
		out.Iterations = iter

		var acc strings.Builder
		resp, err := r.client.Stream(ctx, llm.Request{System: r.o.system, Messages: conv, Tools: defs}, func(delta string) error {
			acc.WriteString(delta)
			return sink.Send(r.chunk(Chunk{Type: ChunkContent, Role: llm.RoleAssistant, Delta: delta, Content: acc.String()}))
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSinkClosed) {
				return abort()
			}
			log.Printf("chat %s: model call failed on iteration %d: %v", r.id, iter, err)
			r.state = StateErrored
			out.State = StateErrored
			out.Err = err
			_ = sink.Send(r.chunk(Chunk{Type: ChunkError, Error: &ErrorInfo{Error: FailureTitle, Message: err.Error()}}))
			return out
		}
		out.Usage.PromptTokens += resp.PromptTokens
		out.Usage.CompletionTokens += resp.CompletionTokens
		out.Usage.TotalTokens += resp.TotalTokens

		if len(resp.ToolCalls) == 0 {
			return r.finish(sink, &out, FinishStop, abort)
		}

		conv = append(conv, llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
		for _, tc := range resp.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, tc.Name)
			if err := sink.Send(r.chunk(Chunk{Type: ChunkToolCall, ToolCall: &ToolCallInfo{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments}})); err != nil {
				return abort()
			}
			result, err := r.o.tools.Call(ctx, tc.Name, tc.Arguments)
			if err != nil {
				if ctx.Err() != nil {
					return abort()
				}
				log.Printf("chat %s: tool %s failed: %v", r.id, tc.Name, err)
				result = toolError(err)
			}
			if err := sink.Send(r.chunk(Chunk{Type: ChunkToolResult, ToolCallID: tc.ID, Content: result})); err != nil {
				return abort()
			}
			conv = append(conv, llm.Message{Role: llm.RoleTool, ToolCallID: tc.ID, Name: tc.Name, Content: result})
		}
	}
	log.Printf("chat %s: stopped after %d iterations", r.id, r.o.maxIterations)
	return r.finish(sink, &out, FinishMaxIterations, abort)
}

func (r *Session) finish(sink Sink, out *Outcome, reason string, abort func() Outcome) Outcome {
	if err := sink.Send(r.chunk(Chunk{Type: ChunkDone, FinishReason: reason})); err != nil {
		return abort()
	}
	r.state = StateCompleted
	out.State = StateCompleted
	out.FinishReason = reason
	return *out
}

func (r *Session) chunk(c Chunk) Chunk {
	c.ID = r.id
	c.Model = r.sel.Model
	c.Timestamp = r.o.now().UnixMilli()
	return c
}

func toolError(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

func (o *Orchestrator) record(r *Session, out Outcome) {
	took := o.now().Sub(r.started)
	provider := string(out.Selection.Kind)
	if provider == "" {
		provider = "none"
	}
	outcome := out.State.String()
	o.metrics.ObserveRun(provider, outcome, out.Iterations, out.ToolCalls, took)
	if o.recorder == nil {
		return
	}
	ev := storage.Event{
		Timestamp:        r.started.UTC(),
		RequestID:        out.RequestID,
		Provider:         provider,
		Model:            out.Selection.Model,
		Fallback:         out.Selection.Fallback,
		Iterations:       out.Iterations,
		ToolCalls:        out.ToolCalls,
		Outcome:          outcome,
		FinishReason:     out.FinishReason,
		DurationMS:       took.Milliseconds(),
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
	}
	if out.Err != nil && out.State == StateErrored {
		ev.Error = out.Err.Error()
	}
	if err := o.recorder.AppendEvent(ev); err != nil {
		log.Printf("chat %s: failed to record run: %v", out.RequestID, err)
	}
}
