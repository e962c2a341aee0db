package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// GeneralRoomName is the distinguished default room. It always exists once
// anyone has used it and can never be deleted.
const GeneralRoomName = "General Chat"

// Room represents the chat_rooms table
type Room struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsPrivate   bool
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

// Message represents the chat_messages table. Exactly one of RoomID and
// RecipientID is set, discriminated by IsDirectMessage. ParentID, when set,
// references an already persisted message; replies form a forest.
type Message struct {
	ID              uuid.UUID
	Content         string
	CreatedAt       time.Time
	AuthorID        uuid.UUID
	RoomID          uuid.NullUUID
	RecipientID     uuid.NullUUID
	IsDirectMessage bool
	ParentID        uuid.NullUUID
	EditedAt        sql.NullTime
}

// Attachment represents the message_attachments table. Filename is the
// opaque storage key; OriginalFilename is what the uploader named it.
type Attachment struct {
	ID               uuid.UUID
	MessageID        uuid.UUID
	Filename         string
	OriginalFilename string
	FileSize         int64
	FileType         string
	UploadedAt       time.Time
}

// Reaction represents the message_reactions table. At most one row exists
// per (message, user, emoji), enforced by a unique index.
type Reaction struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	UserID    uuid.UUID
	Emoji     string
	CreatedAt time.Time
}

func (Room) TableName() string {
	return "chat_rooms"
}

func (Message) TableName() string {
	return "chat_messages"
}

func (Attachment) TableName() string {
	return "message_attachments"
}

func (Reaction) TableName() string {
	return "message_reactions"
}

// ReactionSummary aggregates one emoji on one message.
type ReactionSummary struct {
	Count   int         `json:"count"`
	UserIDs []uuid.UUID `json:"user_ids"`
}

// AttachmentView is the client-facing shape of an attachment.
type AttachmentView struct {
	ID               uuid.UUID `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
}

// MessageView is the client-facing shape of a message, denormalized with
// author presentation fields.
type MessageView struct {
	ID             uuid.UUID        `json:"id"`
	Content        string           `json:"content"`
	Username       string           `json:"username"`
	IsAdmin        bool             `json:"is_admin"`
	Status         string           `json:"status"`
	Timestamp      time.Time        `json:"timestamp"`
	ProfilePic     *string          `json:"profile_pic,omitempty"`
	Attachments    []AttachmentView `json:"attachments"`
	ParentID       uuid.NullUUID    `json:"parent_id,omitempty"`
	ParentUsername string           `json:"parent_username,omitempty"`
	ParentContent  string           `json:"parent_content,omitempty"`
}
