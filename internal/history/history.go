// Package history keeps the ordered message log of one chat session.
package history

import (
	"sync"

	"portfolio/internal/chat"
	"portfolio/internal/llm"
)

type entry struct {
	msg chat.ChatMessage
	// used marks entries that are sent back to the server as context.
	used bool
}

// Log is safe for concurrent use. Every accessor returns copies.
type Log struct {
	mu      sync.RWMutex
	entries []entry
}

func New() *Log {
	return &Log{}
}

func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *Log) AppendUser(id, text string) {
	l.append(textMessage(id, llm.RoleUser, text), true)
}

// StartAssistant opens an empty assistant message that deltas extend.
func (l *Log) StartAssistant(id string) {
	l.append(textMessage(id, llm.RoleAssistant, ""), true)
}

// AppendNotice adds an assistant message that is displayed but never sent
// as context, such as a transport error.
func (l *Log) AppendNotice(id, text string) {
	l.append(textMessage(id, llm.RoleAssistant, text), false)
}

// AppendDelta extends the text of message id. It reports false when no
// such message exists.
func (l *Log) AppendDelta(id, delta string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		m := &l.entries[i].msg
		if m.ID != id {
			continue
		}
		if len(m.Parts) == 0 {
			m.Parts = []chat.Part{{Type: "text"}}
		}
		m.Parts[len(m.Parts)-1].Content += delta
		return true
	}
	return false
}

func (l *Log) append(msg chat.ChatMessage, used bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{msg: msg, used: used})
}

// Context returns the messages to send to the server.
func (l *Log) Context() []chat.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chat.ChatMessage, 0, len(l.entries))
	for _, e := range l.entries {
		if e.used {
			out = append(out, clone(e.msg))
		}
	}
	return out
}

// All returns every message in display order.
func (l *Log) All() []chat.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]chat.ChatMessage, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, clone(e.msg))
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func textMessage(id, role, text string) chat.ChatMessage {
	return chat.ChatMessage{ID: id, Role: role, Parts: []chat.Part{{Type: "text", Content: text}}}
}

func clone(m chat.ChatMessage) chat.ChatMessage {
	m.Parts = append([]chat.Part(nil), m.Parts...)
	return m
}
