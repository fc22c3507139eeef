package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"portfolio/internal/chat"
	"portfolio/internal/sse"
)

// StatusClientClosedRequest is returned when the caller went away before
// the request was handled.
const StatusClientClosedRequest = 499

const maxChatBody = 1 << 20

func (ws *WebServer) handleResumeChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		w.WriteHeader(StatusClientClosedRequest)
		return
	}

	var req chat.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeFailure(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	messages := chat.ToLLMMessages(req.Messages)
	if len(messages) == 0 {
		writeFailure(w, errors.New("messages must contain at least one user or assistant message"))
		return
	}

	if _, ok := w.(http.Flusher); !ok {
		writeFailure(w, sse.ErrStreamingUnsupported)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := ws.chat.Start(ctx, req.Hint())
	if err != nil {
		log.Printf("❌ chat request rejected: %v", err)
		writeFailure(w, err)
		return
	}

	stream, err := sse.NewWriter(w)
	if err != nil {
		session.Fail(err)
		writeFailure(w, err)
		return
	}

	sink := chat.NewChannelSink(ctx, 16)
	outcome := make(chan chat.Outcome, 1)
	go func() {
		outcome <- session.Execute(ctx, messages, sink)
	}()

	clientGone := false
	for c := range sink.Chunks() {
		if clientGone {
			continue
		}
		if err := stream.WriteJSON(c); err != nil {
			log.Printf("chat %s: client write failed: %v", session.ID(), err)
			clientGone = true
			cancel()
		}
	}

	out := <-outcome
	if clientGone || out.State == chat.StateAborted {
		return
	}
	if err := stream.Done(); err != nil {
		log.Printf("chat %s: failed to end stream: %v", session.ID(), err)
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, chat.ErrorInfo{
		Error:   chat.FailureTitle,
		Message: err.Error(),
	})
}
