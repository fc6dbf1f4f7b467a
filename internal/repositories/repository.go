package repositories

import "context"

// Repository aggregates all repository interfaces behind one handle.
type Repository interface {
	// User domain
	User() UserRepository
	RoleRequest() RoleRequestRepository

	// Course domain
	Course() CourseRepository
	Enrollment() EnrollmentRepository

	// Assignment domain
	Assignment() AssignmentRepository
	Submission() SubmissionRepository

	// Messaging domain
	Message() MessageRepository

	// Gradebook (aggregate, read-only)
	Gradebook() GradebookRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
