package task

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Task statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Activity actions recorded in the append-only task_activity_logs table.
const (
	ActionCreated       = "task_created"
	ActionStatusChanged = "status_changed"
	ActionAssigned      = "assigned"
	ActionCommented     = "commented"
)

// Task represents the tasks table
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     sql.NullTime
	AssignedTo  uuid.NullUUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatorID   uuid.UUID
	ProjectID   uuid.NullUUID
}

// Comment represents the task_comments table
type Comment struct {
	ID        uuid.UUID
	Content   string
	TaskID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// ActivityLog is an immutable audit record. Every task mutation appends one
// in the same transaction as the mutation itself; rows are never updated or
// deleted individually.
type ActivityLog struct {
	ID        uuid.UUID
	Action    string
	Details   string
	TaskID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

// Project represents the projects table
type Project struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

func (Task) TableName() string {
	return "tasks"
}

func (Comment) TableName() string {
	return "task_comments"
}

func (ActivityLog) TableName() string {
	return "task_activity_logs"
}

func (Project) TableName() string {
	return "projects"
}

// ValidStatus reports whether s is a known board column.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}
