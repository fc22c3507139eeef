package chat

import (
	"strings"

	"portfolio/internal/llm"
)

// Part is one piece of a structured message. Only text parts carry
// conversation content.
type Part struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Text    string `json:"text,omitempty"`
}

// ChatMessage is a conversation entry as exchanged with the browser. Both
// the flat {role, content} and the {id, role, parts} shapes are accepted.
type ChatMessage struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`
}

// Text returns the flat content, or the text parts joined in order.
func (m ChatMessage) Text() string {
	if m.Content != "" || len(m.Parts) == 0 {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type != "" && p.Type != "text" {
			continue
		}
		if p.Content != "" {
			b.WriteString(p.Content)
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

type RequestData struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Request is the body of a chat call.
type Request struct {
	Messages []ChatMessage `json:"messages"`
	Data     *RequestData  `json:"data,omitempty"`
}

func (r Request) Hint() llm.Hint {
	if r.Data == nil {
		return llm.Hint{}
	}
	return llm.Hint{Provider: r.Data.Provider, Model: r.Data.Model}
}

// ToLLMMessages keeps user and assistant turns with non-empty text.
// Client-supplied system turns are dropped.
func ToLLMMessages(msgs []ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != llm.RoleUser && role != llm.RoleAssistant {
			continue
		}
		text := m.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, llm.Message{Role: role, Content: text})
	}
	return out
}
