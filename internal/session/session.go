// Package session owns durable conversation threads: the session document,
// the pluggable snapshot store, and the manager that runs turns against
// sessions one writer at a time.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// Session statuses. Records are never physically deleted; a reset closes
// the old record and mints a new identity.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Session is one durable conversation thread: its identity, full message
// history, and lifecycle timestamps. Serialized as a single JSON document
// and always written whole.
type Session struct {
	ID        string                         `json:"id"`
	Messages  []openai.ChatCompletionMessage `json:"messages"`
	CreatedAt time.Time                      `json:"created_at"`
	UpdatedAt time.Time                      `json:"updated_at"`
	Status    string                         `json:"status"`
}

// NewSession creates an empty active session with a fresh identity.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusActive,
	}
}
