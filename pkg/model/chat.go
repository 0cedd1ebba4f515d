package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type MessageID string

// NewMessageID generates a new unique MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return goerr.Wrap(ErrInvalidRole, "role validation failed", goerr.V("role", r))
	}
}

// ChatMessage is one turn of a caller-supplied conversation transcript,
// ordered oldest first.
type ChatMessage struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResponse is the outcome of a single chat turn. Sources is the
// retrieval result used to ground the answer and may be empty.
type ChatResponse struct {
	Answer    string          `json:"answer"`
	Sources   []*SearchResult `json:"sources"`
	MessageID MessageID       `json:"messageId"`
}
