package events

import (
	"time"

	"github.com/google/uuid"

	"teamhub/internal/domain/chat"
)

// Outbound event names, matching the wire protocol the web client listens on.
const (
	EventUserConnected      = "user_connected"
	EventUserDisconnected   = "user_disconnected"
	EventOnlineCountUpdated = "online_count_updated"
	EventReceiveMessage     = "receive_message"
	EventMentionNotification = "mention_notification"
	EventReactionsUpdate    = "reactions_update"
	EventUserTyping         = "user_typing"
	EventUserStoppedTyping  = "user_stopped_typing"
	EventUserStatusUpdate   = "user_status_update"
)

// Envelope is the frame every outbound event is delivered in.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// NewEnvelope stamps an event with the current time.
func NewEnvelope(eventType string, payload interface{}) Envelope {
	return Envelope{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// UserPresencePayload accompanies user_connected / user_disconnected.
type UserPresencePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// OnlineCountPayload accompanies online_count_updated.
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// MentionPayload accompanies mention_notification.
type MentionPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
	Room    string `json:"room,omitempty"`
}

// ReactionsPayload accompanies reactions_update. The aggregate is always
// broadcast in full, never as a delta.
type ReactionsPayload struct {
	MessageID uuid.UUID                       `json:"message_id"`
	Reactions map[string]chat.ReactionSummary `json:"reactions"`
}

// TypingPayload accompanies user_typing.
type TypingPayload struct {
	Username string `json:"username"`
}

// StatusPayload accompanies user_status_update.
type StatusPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
}
