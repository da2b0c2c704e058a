package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of domain events the service emits
type EventType string

const (
	EventSessionFinished EventType = "session.finished"
	EventTestPublished   EventType = "test.published"
)

const (
	EventSource  = "quiz-service"
	EventVersion = "1.0"
)

// QuizEvent is the envelope for every published event
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewQuizEvent wraps data in an envelope with a fresh id
func NewQuizEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}
}

func GenerateEventID() string {
	return uuid.NewString()
}

type SessionFinishedEvent struct {
	SessionUUID        string    `json:"session_uuid"`
	TestID             uint      `json:"test_id"`
	UserID             *string   `json:"user_id,omitempty"`
	GuestName          *string   `json:"guest_name,omitempty"`
	ResultID           uint      `json:"result_id"`
	Score              float64   `json:"score"`
	CountCorrect       int       `json:"count_correct"`
	CountWrong         int       `json:"count_wrong"`
	CountAlmostCorrect int       `json:"count_almost_correct"`
	CountSkipped       int       `json:"count_skipped"`
	FinishedAt         time.Time `json:"finished_at"`
}

type TestPublishedEvent struct {
	TestID    uint       `json:"test_id"`
	Title     string     `json:"title"`
	Code      string     `json:"code"`
	AuthorID  string     `json:"author_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
