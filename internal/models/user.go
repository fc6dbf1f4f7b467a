package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent        UserRole = "student"
	RoleInstructor     UserRole = "instructor"
	RoleContentCreator UserRole = "content_creator"
	RoleAdmin          UserRole = "admin"
)

// ParseRole maps the role-string variants seen at the system boundary
// ("contentCreator", "user", "teacher", ...) onto the internal enum.
// The second return is false when raw is not a recognized variant.
func ParseRole(raw string) (UserRole, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrator":
		return RoleAdmin, true
	case "instructor", "teacher", "educator":
		return RoleInstructor, true
	case "content_creator", "contentcreator", "content-creator", "creator":
		return RoleContentCreator, true
	case "student", "learner", "user":
		return RoleStudent, true
	default:
		return RoleStudent, false
	}
}

// NormalizeRole is ParseRole with the unrecognized case collapsed to
// RoleStudent.
func NormalizeRole(raw string) UserRole {
	role, _ := ParseRole(raw)
	return role
}

// IsValidRole reports whether raw is already one of the four enum values.
func IsValidRole(raw string) bool {
	switch UserRole(raw) {
	case RoleAdmin, RoleInstructor, RoleContentCreator, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID    string   `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role  UserRole `json:"role" gorm:"not null;size:32;default:student"`

	FirstName *string `json:"first_name" gorm:"size:100"`
	LastName  *string `json:"last_name" gorm:"size:100"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// DemoUser is one entry of the static legacy bridge table: a fixed demo
// email, its pre-UUID numeric id, and the role assigned on first sight.
type DemoUser struct {
	LegacyID string
	Email    string
	Role     UserRole
}

// RoleRequestStatus tracks the lifecycle of a role elevation request.
type RoleRequestStatus string

const (
	RoleRequestPending  RoleRequestStatus = "pending"
	RoleRequestApproved RoleRequestStatus = "approved"
	RoleRequestRejected RoleRequestStatus = "rejected"
)

// RoleRequest is a user's request for an elevated role, resolved by an admin.
type RoleRequest struct {
	ID            uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        string            `json:"user_id" gorm:"type:uuid;not null;index"`
	RequestedRole UserRole          `json:"requested_role" gorm:"not null;size:32"`
	Status        RoleRequestStatus `json:"status" gorm:"not null;size:16;default:pending;index"`
	Reason        *string           `json:"reason" gorm:"size:500"`
	DecidedBy     *string           `json:"decided_by" gorm:"type:uuid"`
	DecidedAt     *time.Time        `json:"decided_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RoleRequest) TableName() string {
	return "role_requests"
}
