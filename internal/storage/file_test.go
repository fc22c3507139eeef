package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "logs", "chat.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), RequestID: "a", Provider: "openai", Model: "gpt-4o", Iterations: 2, ToolCalls: []string{"getAllJobs"}, Outcome: "completed"}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), RequestID: "b", Provider: "ollama", Model: "mistral:7b", Fallback: true, Iterations: 1, Outcome: "aborted"}
	if err := rec.AppendEvent(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendEvent(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events, err := rec.LoadEvents()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(events, []Event{ev1, ev2}) {
		t.Fatalf("round trip mismatch: %+v", events)
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileRecorder_SkipsCorruptLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "chat.jsonl")
	if err := os.WriteFile(p, []byte("{not json\n\n{\"request_id\":\"ok\",\"outcome\":\"completed\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	events, err := rec.LoadEvents()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 || events[0].RequestID != "ok" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestFileRecorder_ConcurrentAppends(t *testing.T) {
	rec, err := NewFileRecorder(filepath.Join(t.TempDir(), "chat.jsonl"))
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rec.AppendEvent(Event{Outcome: "completed"}); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()
	events, err := rec.LoadEvents()
	if err != nil || len(events) != 20 {
		t.Fatalf("want 20 events, got %d (%v)", len(events), err)
	}
}

func TestFileRecorder_Prune(t *testing.T) {
	rec, err := NewFileRecorder(filepath.Join(t.TempDir(), "chat.jsonl"))
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if err := rec.AppendEvent(Event{Timestamp: base.AddDate(0, 0, i), RequestID: string(rune('a' + i))}); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := rec.Prune(base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d, want 2", removed)
	}
	events, _ := rec.LoadEvents()
	if len(events) != 2 || events[0].RequestID != "c" || events[1].RequestID != "d" {
		t.Fatalf("unexpected remaining events: %+v", events)
	}
}
