package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client       *openai.Client
	model        string
	includeUsage bool
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

func NewOpenAI(apiKey, baseURL, model, referrer, title string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	// Inject optional headers (useful for OpenRouter)
	if referrer != "" || title != "" {
		h := http.Header{}
		if referrer != "" {
			h.Set("HTTP-Referer", referrer)
		}
		if title != "" {
			h.Set("X-Title", title)
		}
		base := http.DefaultTransport
		config.HTTPClient = &http.Client{Transport: headerTransport{rt: base, headers: h}}
	}
	return &OpenAIClient{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		includeUsage: true,
	}
}

// NewOllama talks to a local Ollama daemon through its OpenAI-compatible API.
func NewOllama(baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig("ollama")
	config.BaseURL = baseURL
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Stream(ctx context.Context, r Request, onDelta DeltaFunc) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(r.System, r.Messages),
		Stream:   true,
	}
	if c.includeUsage {
		req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}
	if len(r.Tools) > 0 {
		oaTools := make([]openai.Tool, 0, len(r.Tools))
		for _, tool := range r.Tools {
			oaTools = append(oaTools, openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}
		req.Tools = oaTools
		req.ToolChoice = "auto"
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	defer stream.Close()

	out := Response{Model: c.model}
	var text strings.Builder
	var calls []ToolCall
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Response{}, fmt.Errorf("chat completion stream: %w", err)
		}
		if chunk.Usage != nil {
			out.PromptTokens = chunk.Usage.PromptTokens
			out.CompletionTokens = chunk.Usage.CompletionTokens
			out.TotalTokens = chunk.Usage.TotalTokens
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			text.WriteString(delta.Content)
			if err := onDelta(delta.Content); err != nil {
				return Response{}, err
			}
		}
		calls = mergeToolCallDeltas(calls, delta.ToolCalls)
	}

	out.Content = text.String()
	out.ToolCalls = calls
	return out, nil
}

// mergeToolCallDeltas folds streamed tool-call fragments into whole calls.
// Fragments are keyed by their index; arguments arrive as JSON pieces.
func mergeToolCallDeltas(calls []ToolCall, deltas []openai.ToolCall) []ToolCall {
	for i, d := range deltas {
		idx := i
		if d.Index != nil {
			idx = *d.Index
		}
		for len(calls) <= idx {
			calls = append(calls, ToolCall{})
		}
		if d.ID != "" {
			calls[idx].ID = d.ID
		}
		if d.Function.Name != "" {
			calls[idx].Name = d.Function.Name
		}
		calls[idx].Arguments += d.Function.Arguments
	}
	return calls
}

func toOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessage {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		switch m.Role {
		case RoleAssistant:
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
		case RoleTool:
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.Name
		}
		oaMsgs = append(oaMsgs, msg)
	}
	return oaMsgs
}
