package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func sseServer(t *testing.T, frames []string, gotReq *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if gotReq != nil {
			_ = json.NewDecoder(r.Body).Decode(gotReq)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAIStream_RelaysDeltasInOrder(t *testing.T) {
	srv := sseServer(t, []string{
		`{"id":"1","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
		`{"id":"1","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
		`{"id":"1","choices":[{"index":0,"delta":{"content":"!"},"finish_reason":"stop"}]}`,
		`{"id":"1","choices":[],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`,
	}, nil)
	defer srv.Close()

	c := NewOpenAI("key", srv.URL+"/v1", "gpt-4o", "", "")
	var deltas []string
	resp, err := c.Stream(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if !reflect.DeepEqual(deltas, []string{"Hel", "lo", "!"}) {
		t.Fatalf("unexpected deltas: %v", deltas)
	}
	if resp.Content != "Hello!" || resp.TotalTokens != 5 || len(resp.ToolCalls) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestOpenAIStream_AssemblesToolCalls(t *testing.T) {
	var req map[string]any
	srv := sseServer(t, []string{
		`{"id":"1","choices":[{"index":0,"delta":{"role":"assistant","tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"getJobsBySkill","arguments":""}}]}}]}`,
		`{"id":"1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"skill\":"}}]}}]}`,
		`{"id":"1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"react\"}"}}]}}]}`,
		`{"id":"1","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"getAllEducation","arguments":"{}"}}]},"finish_reason":"tool_calls"}]}`,
	}, &req)
	defer srv.Close()

	c := NewOpenAI("key", srv.URL+"/v1", "gpt-4o", "", "")
	resp, err := c.Stream(context.Background(), Request{
		System:   "be helpful",
		Messages: []Message{{Role: RoleUser, Content: "react?"}},
		Tools:    []Tool{{Name: "getJobsBySkill", Parameters: map[string]interface{}{"type": "object"}}},
	}, func(string) error { return nil })
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	want := []ToolCall{
		{ID: "call_1", Name: "getJobsBySkill", Arguments: `{"skill":"react"}`},
		{ID: "call_2", Name: "getAllEducation", Arguments: `{}`},
	}
	if !reflect.DeepEqual(resp.ToolCalls, want) {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}

	msgs := req["messages"].([]any)
	if first := msgs[0].(map[string]any); first["role"] != "system" || first["content"] != "be helpful" {
		t.Fatalf("system prompt not sent first: %v", first)
	}
	if tools := req["tools"].([]any); len(tools) != 1 {
		t.Fatalf("tools not sent: %v", req["tools"])
	}
}

func TestOpenAIStream_CallbackErrorAborts(t *testing.T) {
	srv := sseServer(t, []string{
		`{"id":"1","choices":[{"index":0,"delta":{"content":"a"}}]}`,
		`{"id":"1","choices":[{"index":0,"delta":{"content":"b"}}]}`,
	}, nil)
	defer srv.Close()

	stop := fmt.Errorf("client gone")
	c := NewOllama(srv.URL+"/v1", "mistral:7b")
	calls := 0
	_, err := c.Stream(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}, func(string) error {
		calls++
		return stop
	})
	if err != stop || calls != 1 {
		t.Fatalf("expected abort after first delta, got err=%v calls=%d", err, calls)
	}
}

func TestToOpenAIMessages_ToolRoundTrip(t *testing.T) {
	msgs := toOpenAIMessages("", []Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "getAllJobs", Arguments: "{}"}}},
		{Role: RoleTool, ToolCallID: "c1", Name: "getAllJobs", Content: "[]"},
	})
	if len(msgs) != 3 {
		t.Fatalf("unexpected len %d", len(msgs))
	}
	if msgs[1].ToolCalls[0].Function.Name != "getAllJobs" || msgs[2].ToolCallID != "c1" {
		t.Fatalf("tool linkage lost: %+v", msgs)
	}
}
