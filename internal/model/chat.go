package model

import (
	"encoding/json"
	"time"
)

type ChatRequest struct {
	UserMessage         string          `json:"userMessage" binding:"required,notblank,max=4000"`
	ConversationHistory json.RawMessage `json:"conversationHistory"`
}

// History returns the raw turns when the history is a JSON array.
func (r *ChatRequest) History() []json.RawMessage {
	if len(r.ConversationHistory) == 0 {
		return nil
	}
	var turns []json.RawMessage
	if err := json.Unmarshal(r.ConversationHistory, &turns); err != nil {
		return nil
	}
	return turns
}

type ChatResponse struct {
	Reply   string `json:"reply"`
	Warning string `json:"warning,omitempty"`
}

// ChatError is the error body of the chat route.
type ChatError struct {
	Error       string `json:"error"`
	BlockReason string `json:"blockReason,omitempty"`
}

// ChatProfile is the profile slice used for prompting.
type ChatProfile struct {
	FullName    *string    `json:"full_name" db:"full_name"`
	Email       string     `json:"email" db:"email"`
	PhoneNumber *string    `json:"phone_number" db:"phone_number"`
	BirthDate   *time.Time `json:"birth_date" db:"birth_date"`
	Gender      *string    `json:"gender" db:"gender"`
	Age         *int       `json:"age"`
}

// ChatContext is everything gathered about a user for one chat turn.
type ChatContext struct {
	Profile       *ChatProfile          `json:"profileData"`
	Medications   []*Medication         `json:"medications"`
	HealthHistory []*HealthHistoryEntry `json:"healthHistory"`
	Reports       []*Report             `json:"reports"`
}

// ChatDebug is returned by the context inspection endpoint.
type ChatDebug struct {
	UserID  int64 `json:"userId"`
	ChatContext
	GeneratedUserContext string `json:"generatedUserContext"`
	CalculatedAge        *int   `json:"calculatedAge"`
}
