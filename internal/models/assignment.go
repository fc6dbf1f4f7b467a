package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Assignment struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	CourseID    uint       `json:"course_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null;size:200"`
	Description *string    `json:"description" gorm:"size:2000"`
	MaxPoints   int        `json:"max_points" gorm:"not null;default:100"`
	DueDate     *time.Time `json:"due_date"`
	CreatedBy   string     `json:"created_by" gorm:"type:uuid;not null;index"`

	Course  *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Creator *User   `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Assignment) TableName() string {
	return "assignments"
}

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionGraded    SubmissionStatus = "graded"
)

// Submission holds one student's answer to an assignment. The
// (assignment_id, user_id) pair is unique; a repeat submit returns the
// existing row instead of creating a duplicate.
type Submission struct {
	ID           uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	AssignmentID uint             `json:"assignment_id" gorm:"not null;uniqueIndex:idx_submissions_assignment_user"`
	UserID       string           `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_user"`
	Content      datatypes.JSON   `json:"content"`
	Status       SubmissionStatus `json:"status" gorm:"not null;size:16;default:submitted"`

	// Grading fields. LetterGrade is optional on some deployments and may
	// be absent from the table; the grading write path tolerates that.
	Score       *float64   `json:"score"`
	Feedback    *string    `json:"feedback" gorm:"size:2000"`
	LetterGrade *string    `json:"letter_grade" gorm:"size:4"`
	GradedBy    *string    `json:"graded_by" gorm:"type:uuid"`
	GradedAt    *time.Time `json:"graded_at"`

	Assignment *Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
	User       *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
