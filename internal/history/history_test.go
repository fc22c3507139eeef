package history

import (
	"sync"
	"testing"

	"portfolio/internal/chat"
)

func TestLogAppendDeltaAndReset(t *testing.T) {
	h := New()
	h.AppendUser("u1", "hello")
	h.StartAssistant("a1")
	for _, d := range []string{"hi", " there"} {
		if !h.AppendDelta("a1", d) {
			t.Fatalf("delta for existing message rejected")
		}
	}
	if h.AppendDelta("missing", "x") {
		t.Fatalf("delta for unknown message accepted")
	}

	msgs := h.All()
	if len(msgs) != 2 {
		t.Fatalf("unexpected length %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Text() != "hello" {
		t.Fatalf("unexpected [0]: %+v", msgs[0])
	}
	if msgs[1].Role != "assistant" || msgs[1].Text() != "hi there" || msgs[1].ID != "a1" {
		t.Fatalf("unexpected [1]: %+v", msgs[1])
	}

	// Ensure copy semantics (modifying returned slice does not affect internal state)
	msgs[0].Parts[0] = chat.Part{Type: "text", Content: "mutated"}
	if h.All()[0].Text() != "hello" {
		t.Fatalf("internal state mutated via returned slice")
	}

	h.Reset()
	if h.Len() != 0 {
		t.Fatalf("reset did not clear the log")
	}
}

func TestLogNoticesAreNotContext(t *testing.T) {
	h := New()
	h.AppendUser("u1", "hello")
	h.AppendNotice("n1", "[connection refused]")
	if len(h.All()) != 2 {
		t.Fatalf("notice should be displayed")
	}
	ctx := h.Context()
	if len(ctx) != 1 || ctx[0].ID != "u1" {
		t.Fatalf("notice leaked into context: %+v", ctx)
	}
}

func TestLogConcurrentDeltas(t *testing.T) {
	h := New()
	h.StartAssistant("a")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.AppendDelta("a", "x")
		}()
	}
	wg.Wait()
	if got := len(h.All()[0].Text()); got != 50 {
		t.Fatalf("lost deltas: %d", got)
	}
}
