package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"teamhub/internal/domain/chat"
	"teamhub/internal/domain/task"
	"teamhub/internal/domain/user"
)

// UserRepository provides CRUD access to users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RoomRepository provides CRUD access to chat rooms.
type RoomRepository interface {
	Create(ctx context.Context, r *chat.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Room, error)
	GetByName(ctx context.Context, name string) (chat.Room, error)
	ListPublic(ctx context.Context) ([]chat.Room, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllExcept(ctx context.Context, name string) error
}

// MessageRepository provides access to messages, their attachments and
// reactions. Delete cascades to attachments and reactions but leaves replies
// in place with a dangling parent reference.
type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error

	ListSince(ctx context.Context, since time.Time) ([]chat.MessageView, error)
	ListRoomMessages(ctx context.Context, roomID uuid.UUID) ([]chat.MessageView, error)
	ListDirectThread(ctx context.Context, userA, userB uuid.UUID) ([]chat.MessageView, error)

	CreateAttachment(ctx context.Context, a *chat.Attachment) error
	GetAttachment(ctx context.Context, id uuid.UUID) (chat.Attachment, error)
	ListAttachments(ctx context.Context, messageID uuid.UUID) ([]chat.Attachment, error)

	AddReaction(ctx context.Context, r *chat.Reaction) error
	RemoveReaction(ctx context.Context, messageID, userID uuid.UUID, emoji string) error
	ReactionAggregate(ctx context.Context, messageID uuid.UUID) (map[string]chat.ReactionSummary, error)
}

// TaskRepository provides CRUD access to the task board. Mutations that must
// appear in the audit trail accept the activity row and commit it in the same
// transaction.
type TaskRepository interface {
	Create(ctx context.Context, t *task.Task, activity *task.ActivityLog) error
	GetByID(ctx context.Context, id uuid.UUID) (task.Task, error)
	ListByStatus(ctx context.Context, status string) ([]task.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, activity *task.ActivityLog) error
	Assign(ctx context.Context, id uuid.UUID, assignee uuid.NullUUID, activity *task.ActivityLog) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateComment(ctx context.Context, c *task.Comment, activity *task.ActivityLog) error
	ListComments(ctx context.Context, taskID uuid.UUID) ([]task.Comment, error)
	ListActivity(ctx context.Context, taskID uuid.UUID) ([]task.ActivityLog, error)

	CreateProject(ctx context.Context, p *task.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (task.Project, error)
	ListProjects(ctx context.Context) ([]task.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
}
