package chat

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the generic title of a fresh session. It is replaced by
// the first user message, truncated to titleLimit runes.
const (
	DefaultTitle = "New Chat"
	titleLimit   = 30
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Source points at the document a retrieved answer was grounded on.
type Source struct {
	Name string `json:"name"`
	Page *int   `json:"page,omitempty"`
}

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(content string, sources []Source) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Sources:   sources,
	}
}

// autoTitle derives a session title from the first user message: the first
// titleLimit runes, ellipsis-suffixed iff the content was longer.
func autoTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}
