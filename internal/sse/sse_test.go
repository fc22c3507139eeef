package sse

import (
	"context"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestWriterFramesAndReaderParses(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WriteJSON(map[string]string{"type": "content", "delta": "Hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteJSON(map[string]string{"type": "content", "delta": " there"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := "data: {\"delta\":\"Hi\",\"type\":\"content\"}\n\n" +
		"data: {\"delta\":\" there\",\"type\":\"content\"}\n\n" +
		"data: [DONE]\n\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}

	var got []string
	err = Read(context.Background(), strings.NewReader(rec.Body.String()), func(_, data string) error {
		got = append(got, data)
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	wantData := []string{`{"delta":"Hi","type":"content"}`, `{"delta":" there","type":"content"}`, DoneMarker}
	if !reflect.DeepEqual(got, wantData) {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestRead_EventNamesCommentsAndMultilineData(t *testing.T) {
	stream := ": keep-alive\n\nevent: message\ndata: line one\ndata: line two\n\ndata: tail"
	type ev struct{ name, data string }
	var got []ev
	err := Read(context.Background(), strings.NewReader(stream), func(name, data string) error {
		got = append(got, ev{name, data})
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []ev{{"message", "line one\nline two"}, {"", "tail"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
