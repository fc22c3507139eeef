package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"portfolio/internal/chat"
	"portfolio/internal/config"
	"portfolio/internal/content"
	"portfolio/internal/llm"
	"portfolio/internal/server"
	"portfolio/internal/tools"
)

func chunkFrame(c chat.Chunk) string {
	b, _ := json.Marshal(c)
	return fmt.Sprintf("data: %s\n\n", b)
}

func streamServer(t *testing.T, frames []string, gotReq *chat.Request) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotReq != nil {
			_ = json.NewDecoder(r.Body).Decode(gotReq)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frames {
			fmt.Fprint(w, f)
		}
	}))
}

func TestToggleAndGuards(t *testing.T) {
	w := New(Options{Endpoint: "http://127.0.0.1:0"})
	if w.Visibility() != Closed || w.Phase() != Idle {
		t.Fatalf("unexpected initial state %s/%s", w.Visibility(), w.Phase())
	}
	if w.Placeholder() != Greeting {
		t.Fatalf("empty widget should show the greeting")
	}

	w.SetInput("hello")
	if err := w.Send(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("send while closed: %v", err)
	}
	if w.Input() != "hello" || len(w.Messages()) != 0 {
		t.Fatalf("rejected send must not consume input")
	}

	if w.Toggle() != Open {
		t.Fatalf("toggle should open")
	}
	w.SetInput("   ")
	if err := w.Send(context.Background()); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("send blank input: %v", err)
	}
	if w.Toggle() != Closed {
		t.Fatalf("toggle should close")
	}
}

func TestSend_AppendsDeltasInOrderAndReturnsToIdle(t *testing.T) {
	var got chat.Request
	srv := streamServer(t, []string{
		chunkFrame(chat.Chunk{Type: chat.ChunkToolCall, ToolCall: &chat.ToolCallInfo{Name: "getAllJobs"}}),
		chunkFrame(chat.Chunk{Type: chat.ChunkToolResult, Content: "[]"}),
		chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "Five "}),
		chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "years."}),
		chunkFrame(chat.Chunk{Type: chat.ChunkDone, FinishReason: chat.FinishStop}),
		"data: [DONE]\n\n",
	}, &got)
	defer srv.Close()

	var deltas, toolNames []string
	w := New(Options{
		Endpoint:   srv.URL,
		Provider:   "ollama",
		Model:      "llama3.1:8b",
		OnDelta:    func(d string) { deltas = append(deltas, d) },
		OnToolCall: func(name string) { toolNames = append(toolNames, name) },
	})
	w.Open()
	w.SetInput("  How much experience?  ")
	if err := w.Send(context.Background()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if w.Phase() != Idle || w.Input() != "" {
		t.Fatalf("unexpected state after send: %s %q", w.Phase(), w.Input())
	}
	msgs := w.Messages()
	if len(msgs) != 2 || msgs[0].Text() != "How much experience?" || msgs[1].Text() != "Five years." {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if msgs[0].ID == "" || msgs[1].ID == "" || msgs[0].ID == msgs[1].ID {
		t.Fatalf("messages need distinct ids: %+v", msgs)
	}
	if strings.Join(deltas, "|") != "Five |years." || len(toolNames) != 1 {
		t.Fatalf("callbacks: deltas=%v tools=%v", deltas, toolNames)
	}
	if len(got.Messages) != 1 || got.Messages[0].Parts[0].Content != "How much experience?" {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Data == nil || got.Data.Provider != "ollama" || got.Data.Model != "llama3.1:8b" {
		t.Fatalf("hint not sent: %+v", got.Data)
	}
	if w.Placeholder() != "" {
		t.Fatalf("greeting should disappear once messages exist")
	}

	if err := w.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(w.Messages()) != 0 || w.Placeholder() != Greeting {
		t.Fatalf("reset should clear the conversation")
	}
}

func TestSend_SeparatesTextAcrossToolCalls(t *testing.T) {
	srv := streamServer(t, []string{
		chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "Let me check."}),
		chunkFrame(chat.Chunk{Type: chat.ChunkToolCall, ToolCall: &chat.ToolCallInfo{Name: "searchExperience"}}),
		chunkFrame(chat.Chunk{Type: chat.ChunkToolResult, Content: "[]"}),
		chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "Yes, "}),
		chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "twice."}),
		chunkFrame(chat.Chunk{Type: chat.ChunkDone, FinishReason: chat.FinishStop}),
		"data: [DONE]\n\n",
	}, nil)
	defer srv.Close()

	var printed strings.Builder
	w := New(Options{Endpoint: srv.URL, OnDelta: func(d string) { printed.WriteString(d) }})
	w.Open()
	w.SetInput("Has the candidate led a team?")
	if err := w.Send(context.Background()); err != nil {
		t.Fatalf("send: %v", err)
	}

	want := "Let me check." + IterationBreak + "Yes, twice."
	msgs := w.Messages()
	if len(msgs) != 2 || msgs[1].Text() != want {
		t.Fatalf("got %q, want %q", msgs[len(msgs)-1].Text(), want)
	}
	if printed.String() != want {
		t.Fatalf("printed %q, want %q", printed.String(), want)
	}
}

func TestSend_ServerErrorBecomesNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to process chat request","message":"no llm provider configured"}`))
	}))
	defer srv.Close()

	w := New(Options{Endpoint: srv.URL})
	w.Open()
	w.SetInput("hi")
	err := w.Send(context.Background())
	var se *ServerError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError || se.Message != "no llm provider configured" {
		t.Fatalf("unexpected error %v", err)
	}
	if w.Phase() != Idle {
		t.Fatalf("widget must return to idle")
	}
	msgs := w.Messages()
	if len(msgs) != 2 || !strings.Contains(msgs[1].Text(), "no llm provider configured") {
		t.Fatalf("notice not displayed: %+v", msgs)
	}

	// the notice is not sent back as context on the next turn
	var got chat.Request
	ok := streamServer(t, []string{"data: [DONE]\n\n"}, &got)
	defer ok.Close()
	w.opts.Endpoint = ok.URL
	w.SetInput("again")
	if err := w.Send(context.Background()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(got.Messages) != 2 || got.Messages[1].Text() != "again" {
		t.Fatalf("unexpected context %+v", got.Messages)
	}
}

func TestSend_ErrorChunk(t *testing.T) {
	srv := streamServer(t, []string{
		chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "partial"}),
		chunkFrame(chat.Chunk{Type: chat.ChunkError, Error: &chat.ErrorInfo{Error: chat.FailureTitle, Message: "upstream 503"}}),
		"data: [DONE]\n\n",
	}, nil)
	defer srv.Close()

	w := New(Options{Endpoint: srv.URL})
	w.Open()
	w.SetInput("hi")
	err := w.Send(context.Background())
	var se *ServerError
	if !errors.As(err, &se) || se.Message != "upstream 503" {
		t.Fatalf("unexpected error %v", err)
	}
	if msgs := w.Messages(); msgs[1].Text() != "partial" {
		t.Fatalf("partial reply should be kept: %+v", msgs)
	}
}

func TestSend_CancelReturnsToIdle(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, chunkFrame(chat.Chunk{Type: chat.ChunkContent, Delta: "thinking"}))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	w := New(Options{Endpoint: srv.URL, OnDelta: func(string) { cancel() }})
	w.Open()
	w.SetInput("hi")
	if err := w.Send(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if w.Phase() != Idle {
		t.Fatalf("widget must return to idle after cancel")
	}
	if msgs := w.Messages(); len(msgs) != 2 || msgs[1].Text() != "thinking" {
		t.Fatalf("unexpected messages after cancel: %+v", msgs)
	}
}

func TestSend_RejectsConcurrentSend(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	w := New(Options{Endpoint: srv.URL})
	w.Open()
	w.SetInput("first")
	errc := make(chan error, 1)
	go func() { errc <- w.Send(context.Background()) }()
	<-started

	if w.Phase() != Sending {
		t.Fatalf("expected sending phase, got %s", w.Phase())
	}
	w.SetInput("second")
	if err := w.Send(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(release)
	if err := <-errc; err != nil {
		t.Fatalf("first send: %v", err)
	}
}

type echoClient struct{}

func (echoClient) Stream(_ context.Context, req llm.Request, onDelta llm.DeltaFunc) (llm.Response, error) {
	last := req.Messages[len(req.Messages)-1].Content
	for _, word := range strings.SplitAfter("You asked: "+last, " ") {
		if err := onDelta(word); err != nil {
			return llm.Response{}, err
		}
	}
	return llm.Response{Content: "You asked: " + last}, nil
}

type echoFactory struct{}

func (echoFactory) Create(context.Context, llm.Selection) (llm.Client, error) { return echoClient{}, nil }

func TestWidgetAgainstServer(t *testing.T) {
	store := content.NewStore(nil, nil)
	cfg := &config.Config{FallbackProvider: "ollama", OllamaBaseURL: "http://localhost:11434/v1", OllamaModel: "mistral:7b"}
	orch := chat.New(cfg, echoFactory{}, tools.NewRegistry(store), chat.Options{})
	srv := httptest.NewServer(server.NewWebServer(0, store, orch, nil).Handler())
	defer srv.Close()

	w := New(Options{Endpoint: srv.URL + "/api/resume-chat"})
	w.Open()
	for _, q := range []string{"first question", "second question"} {
		w.SetInput(q)
		if err := w.Send(context.Background()); err != nil {
			t.Fatalf("send %q: %v", q, err)
		}
	}
	msgs := w.Messages()
	if len(msgs) != 4 || msgs[3].Text() != "You asked: second question" {
		t.Fatalf("unexpected conversation %+v", msgs)
	}
}
