package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Stream(ctx context.Context, r Request, onDelta DeltaFunc) (Response, error) {
	cfg := &genai.GenerateContentConfig{}
	if r.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if len(r.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(r.Tools))
		for _, t := range r.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	out := Response{Model: c.model}
	var text strings.Builder
	for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.model, toGeminiContents(r.Messages), cfg) {
		if err != nil {
			return Response{}, fmt.Errorf("gemini stream: %w", err)
		}
		if u := chunk.UsageMetadata; u != nil {
			out.PromptTokens = int(u.PromptTokenCount)
			out.CompletionTokens = int(u.CandidatesTokenCount)
			out.TotalTokens = int(u.TotalTokenCount)
		}
		if len(chunk.Candidates) == 0 || chunk.Candidates[0].Content == nil {
			continue
		}
		for _, part := range chunk.Candidates[0].Content.Parts {
			switch {
			case part.FunctionCall != nil:
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return Response{}, fmt.Errorf("encode gemini function args: %w", err)
				}
				id := part.FunctionCall.ID
				if id == "" {
					id = uuid.NewString()
				}
				out.ToolCalls = append(out.ToolCalls, ToolCall{ID: id, Name: part.FunctionCall.Name, Arguments: string(args)})
			case part.Text != "" && !part.Thought:
				text.WriteString(part.Text)
				if err := onDelta(part.Text); err != nil {
					return Response{}, err
				}
			}
		}
	}
	out.Content = text.String()
	return out, nil
}

func toGeminiContents(messages []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleAssistant:
			parts := make([]*genai.Part, 0, 1+len(m.ToolCalls))
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			if len(parts) == 0 {
				continue
			}
			out = append(out, genai.NewContentFromParts(parts, genai.RoleModel))
		case RoleTool:
			var result any
			if err := json.Unmarshal([]byte(m.Content), &result); err != nil {
				result = m.Content
			}
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.Name,
				Response: map[string]any{"output": result},
			}}
			if n := len(out); n > 0 && out[n-1].Role == string(genai.RoleUser) && len(out[n-1].Parts) > 0 && out[n-1].Parts[0].FunctionResponse != nil {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		default:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return out
}
