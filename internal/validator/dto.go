package validator

import (
	"time"
)

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Subject     *string `json:"subject" validate:"omitempty,max=100"`
	Published   bool    `json:"published"`

	// Demo identifier fallback, consulted only when no session is present
	CreatorID *string `json:"creator_id" validate:"omitempty"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Subject     *string `json:"subject" validate:"omitempty,max=100"`
	Published   *bool   `json:"published"`

	UpdaterID *string `json:"updater_id" validate:"omitempty"`
}

// EnrollRequest enrolls a user into a course. An empty user_id (or no
// body at all) enrolls the acting user.
type EnrollRequest struct {
	UserID string `json:"user_id" validate:"omitempty"`
}

// AssignmentCreateRequest represents the request structure for creating assignments
type AssignmentCreateRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	MaxPoints   int        `json:"max_points" validate:"required,min=1,max=1000"`
	DueDate     *time.Time `json:"due_date"`

	CreatorID *string `json:"creator_id" validate:"omitempty"`
}

// AssignmentUpdateRequest represents the request structure for updating assignments
type AssignmentUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	MaxPoints   *int       `json:"max_points" validate:"omitempty,min=1,max=1000"`
	DueDate     *time.Time `json:"due_date"`

	UpdaterID *string `json:"updater_id" validate:"omitempty"`
}

// SubmissionCreateRequest submits an answer for an assignment
type SubmissionCreateRequest struct {
	Content interface{} `json:"content" validate:"required"`

	UserID *string `json:"user_id" validate:"omitempty"`
}

// GradeRequest grades a submission
type GradeRequest struct {
	Score       float64 `json:"score" validate:"min=0"`
	Feedback    *string `json:"feedback" validate:"omitempty,max=2000"`
	LetterGrade *string `json:"letter_grade" validate:"omitempty,max=4"`

	GraderID *string `json:"grader_id" validate:"omitempty"`
}

// MessageSendRequest sends a direct message
type MessageSendRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Subject   string `json:"subject" validate:"required,min=1,max=200"`
	Body      string `json:"body" validate:"required,min=1,max=5000"`

	SenderID *string `json:"sender_id" validate:"omitempty"`
}

// MessageBroadcastRequest sends a message to every user holding a role
type MessageBroadcastRequest struct {
	Audience string `json:"audience" validate:"required"`
	Subject  string `json:"subject" validate:"required,min=1,max=200"`
	Body     string `json:"body" validate:"required,min=1,max=5000"`

	SenderID *string `json:"sender_id" validate:"omitempty"`
}

// RoleUpdateRequest changes a user's role (admin only)
type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required"`

	UpdaterID *string `json:"updater_id" validate:"omitempty"`
}

// RoleRequestCreateRequest files a role elevation request
type RoleRequestCreateRequest struct {
	RequestedRole string  `json:"requested_role" validate:"required"`
	Reason        *string `json:"reason" validate:"omitempty,max=500"`

	UserID *string `json:"user_id" validate:"omitempty"`
}

// RoleRequestDecision approves or rejects a pending role request
type RoleRequestDecision struct {
	Approve bool `json:"approve"`

	UpdaterID *string `json:"updater_id" validate:"omitempty"`
}
