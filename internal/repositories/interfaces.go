package repositories

import (
	"context"

	"github.com/openedu-labs/lms-service/internal/models"
)

// CourseFilters defines filters for course listing.
type CourseFilters struct {
	Query     string
	Subject   *string
	OwnerID   *string
	Published *bool
	Limit     int
	Offset    int
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Course, error)
}

type EnrollmentRepository interface {
	// Create surfaces a (course_id, user_id) uniqueness violation as
	// ErrDuplicateKey so the service can converge the race.
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Get(ctx context.Context, courseID uint, userID string) (*models.Enrollment, error)
	Delete(ctx context.Context, courseID uint, userID string) error
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uint) (*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Assignment, error)
}

// GradeUpdate is the grading write payload. Optional fields are dropped on
// a degraded schema (missing column) and the write retried once.
type GradeUpdate struct {
	Score       float64
	Feedback    *string
	LetterGrade *string
	GradedBy    string
}

type SubmissionRepository interface {
	// Create surfaces an (assignment_id, user_id) uniqueness violation as
	// ErrDuplicateKey so the service can return the existing row.
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetByAssignmentAndUser(ctx context.Context, assignmentID uint, userID string) (*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]*models.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Submission, error)
	UpdateGrade(ctx context.Context, id uint, grade GradeUpdate) error
	// UpdateGradeRequired writes only the columns every deployment has.
	UpdateGradeRequired(ctx context.Context, id uint, grade GradeUpdate) error
}

type MessageFilters struct {
	Unread bool
	Limit  int
	Offset int
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	CreateBatch(ctx context.Context, messages []*models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListInbox(ctx context.Context, recipientID string, filters MessageFilters) ([]*models.Message, int64, error)
	MarkRead(ctx context.Context, id uint, recipientID string) error
}

// GradebookRow is one (student, assignment) cell of a course gradebook.
type GradebookRow struct {
	StudentID    string
	StudentEmail string
	AssignmentID uint
	Assignment   string
	MaxPoints    int
	Score        *float64
	LetterGrade  *string
	GradedAt     *string
}

// GradebookRepository issues the aggregate gradebook query backing the
// instructor export.
type GradebookRepository interface {
	CourseGradebook(ctx context.Context, courseID uint) ([]*GradebookRow, error)
}
