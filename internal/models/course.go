package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"size:2000"`
	Subject     *string `json:"subject" gorm:"size:100"`
	OwnerID     string  `json:"owner_id" gorm:"type:uuid;not null;index"`
	Published   bool    `json:"published" gorm:"default:false"`

	Owner       *User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Assignments []Assignment `json:"assignments,omitempty" gorm:"foreignKey:CourseID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment links a user to a course. The (course_id, user_id) pair is
// unique; a duplicate insert is a benign race, not an error.
type Enrollment struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	CourseID uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_course_user"`
	UserID   string `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_user"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
