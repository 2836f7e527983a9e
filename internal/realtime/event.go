package realtime

import (
	"encoding/json"
	"time"
)

// Event names carried on the wire. The notification pair is asymmetric on
// purpose: clients request delivery with EventSendNotification and the
// server always rebroadcasts the persisted copy as EventNotification.
const (
	EventSendNotification = "sendNotification"
	EventNotification     = "notification"
	EventTaskUpdated      = "taskUpdated"
	EventProjectUpdated   = "projectUpdated"
	EventCommentAdded     = "commentAdded"
)

// Envelope frames every event in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into a wire frame.
func NewEnvelope(event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Payload: raw}, nil
}

// NotificationPayload is the body of sendNotification / notification events.
type NotificationPayload struct {
	ID        int64          `json:"id,omitempty"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	UserID    int64          `json:"userId"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// TaskEvent is the body of taskUpdated events.
type TaskEvent struct {
	Action    string    `json:"action"` // created | updated | deleted
	Task      any       `json:"task"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectEvent is the body of projectUpdated events.
type ProjectEvent struct {
	Action    string    `json:"action"` // created | updated | memberAdded | memberRemoved | deleted
	Project   any       `json:"project"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentEvent is the body of commentAdded events.
type CommentEvent struct {
	Action    string    `json:"action"` // created | updated | deleted
	Comment   any       `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}
