package services

import (
	"context"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type EnrollRequest = validator.EnrollRequest
type CreateAssignmentRequest = validator.AssignmentCreateRequest
type UpdateAssignmentRequest = validator.AssignmentUpdateRequest
type CreateSubmissionRequest = validator.SubmissionCreateRequest
type GradeRequest = validator.GradeRequest
type SendMessageRequest = validator.MessageSendRequest
type BroadcastRequest = validator.MessageBroadcastRequest
type UpdateRoleRequest = validator.RoleUpdateRequest
type CreateRoleRequestRequest = validator.RoleRequestCreateRequest
type RoleRequestDecision = validator.RoleRequestDecision

type CourseResponse struct {
	*models.Course
	CanEdit   bool  `json:"can_edit"`
	CanDelete bool  `json:"can_delete"`
	Enrolled  int64 `json:"enrolled"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type EnrollmentResponse struct {
	*models.Enrollment
	AlreadyEnrolled bool `json:"already_enrolled"`
}

type SubmissionResponse struct {
	*models.Submission
	AlreadyExists bool `json:"already_exists"`
}

type GradeResponse struct {
	*models.Submission
	DegradedWrite bool `json:"degraded_write,omitempty"`
}

type InboxResponse struct {
	Messages []*models.Message `json:"messages"`
	Total    int64             `json:"total"`
	Unread   bool              `json:"unread_only"`
}

type BroadcastResponse struct {
	Audience   models.UserRole `json:"audience"`
	Recipients int             `json:"recipients"`
}

// ===== AUTHORIZATION =====

// AuthContext carries every place a request may name its acting user, in
// resolution priority order: verified session first, explicit body/query
// fields next, the demo fallback header last.
type AuthContext struct {
	SessionUserID string
	Explicit      []string
	FallbackID    string
}

// AuthDecision is the authorizer's verdict. Status and Message are only
// meaningful when Ok is false; User is only set when Ok is true.
type AuthDecision struct {
	Ok      bool
	Status  int
	Message string
	User    *models.User
}

// ===== SERVICE INTERFACES =====

// IdentityService canonicalizes identifier tokens and answers role
// questions against the live user table.
type IdentityService interface {
	// Resolve turns an email, UUID-shaped, or legacy numeric token into a
	// canonical user id, creating the user row on first sight of a known
	// demo email. The only intended side effect in the auth path.
	Resolve(ctx context.Context, token string) (string, error)

	// RoleOf fetches the stored role by canonical id, fresh on every call.
	RoleOf(ctx context.Context, userID string) (models.UserRole, error)

	// GetUser fetches the full user row by canonical id.
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Authorizer is the single chokepoint every privileged handler calls
// before touching data.
type Authorizer interface {
	// Authorize resolves the acting user and checks the capability table
	// for action.
	Authorize(ctx context.Context, ac AuthContext, action models.Action) *AuthDecision

	// Authenticate resolves the acting user without a capability check,
	// for operations open to every identified user.
	Authenticate(ctx context.Context, ac AuthContext) *AuthDecision
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, actor *models.User) (*CourseResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*CourseResponse, error)
	List(ctx context.Context, query string, page, size int, actor *models.User) (*CourseListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, actor *models.User) (*CourseResponse, error)
	Delete(ctx context.Context, id uint, actor *models.User) error

	Enroll(ctx context.Context, courseID uint, userToken string, actor *models.User) (*EnrollmentResponse, error)
	Unenroll(ctx context.Context, courseID uint, userToken string, actor *models.User) error
	ListEnrollments(ctx context.Context, courseID uint, actor *models.User) ([]*models.Enrollment, error)
	ListForStudent(ctx context.Context, actor *models.User) ([]*models.Enrollment, error)
	ListOwned(ctx context.Context, actor *models.User) ([]*CourseResponse, error)
}

type AssignmentService interface {
	Create(ctx context.Context, courseID uint, req *CreateAssignmentRequest, actor *models.User) (*models.Assignment, error)
	GetByID(ctx context.Context, id uint) (*models.Assignment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Assignment, error)
	Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, actor *models.User) (*models.Assignment, error)
	Delete(ctx context.Context, id uint, actor *models.User) error
}

type SubmissionService interface {
	Submit(ctx context.Context, assignmentID uint, req *CreateSubmissionRequest, actor *models.User) (*SubmissionResponse, error)
	GetByID(ctx context.Context, id uint, actor *models.User) (*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint, actor *models.User) ([]*models.Submission, error)
	ListMine(ctx context.Context, actor *models.User) ([]*models.Submission, error)
	Grade(ctx context.Context, submissionID uint, req *GradeRequest, actor *models.User) (*GradeResponse, error)
}

type MessageService interface {
	Send(ctx context.Context, req *SendMessageRequest, actor *models.User) (*models.Message, error)
	Broadcast(ctx context.Context, req *BroadcastRequest, actor *models.User) (*BroadcastResponse, error)
	Inbox(ctx context.Context, actor *models.User, unreadOnly bool, page, size int) (*InboxResponse, error)
	MarkRead(ctx context.Context, id uint, actor *models.User) error
}

type AdminService interface {
	ListUsers(ctx context.Context, query string, role string, page, size int) ([]*models.User, int64, error)
	GetUser(ctx context.Context, token string) (*models.User, error)
	UpdateRole(ctx context.Context, userToken string, req *UpdateRoleRequest, actor *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, userToken string, actor *models.User) error

	RequestRole(ctx context.Context, req *CreateRoleRequestRequest, actor *models.User) (*models.RoleRequest, error)
	ListPendingRoleRequests(ctx context.Context) ([]*models.RoleRequest, error)
	DecideRoleRequest(ctx context.Context, requestID uint, decision *RoleRequestDecision, actor *models.User) (*models.RoleRequest, error)
}

// GradebookService produces the instructor-facing gradebook export.
type GradebookService interface {
	ExportCourseGradebook(ctx context.Context, courseID uint, actor *models.User) ([]byte, string, error)
}
