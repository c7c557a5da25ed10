package domain

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one turn in a session. Immutable once created; identity is
// the ID; ordering is append-only within a session.
type Message struct {
	ID        string        `json:"id"`
	Sender    Sender        `json:"sender"`
	Payload   RenderPayload `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
}

// ChatRequest is the request to send an advisory chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the response to an advisory chat message
type ChatResponse struct {
	SessionID string  `json:"session_id"`
	Message   Message `json:"message"`
}

// Stats represents system statistics
type Stats struct {
	TotalSessions    int `json:"total_sessions"`
	TotalMessages    int `json:"total_messages"`
	TotalPredictions int `json:"total_predictions"`
}
