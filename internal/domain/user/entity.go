package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

// Announced statuses. The persisted status is the last mood a user set
// explicitly; it is independent of whether the user currently has a live
// connection.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusDND     = "dnd"
	StatusOffline = "offline"
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	ProfilePic   sql.NullString
	CreatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanModerate reports whether the user may delete other users' messages.
func (u User) CanModerate() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// ValidStatus reports whether s is one of the announced statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusOnline, StatusAway, StatusDND, StatusOffline:
		return true
	}
	return false
}
