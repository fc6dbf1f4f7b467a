package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openedu-labs/lms-service/internal/config"
	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

// mockRepository is an in-memory repositories.Repository used by the
// service tests. All sub-repositories share the same store and mutex so
// behavior under concurrent resolution matches a single database.
type mockRepository struct {
	mu sync.Mutex

	users       map[string]*models.User // by id
	courses     map[uint]*models.Course
	enrollments map[string]*models.Enrollment // by "courseID/userID"
	assignments map[uint]*models.Assignment
	submissions map[uint]*models.Submission
	messages    map[uint]*models.Message
	requests    map[uint]*models.RoleRequest

	nextCourseID     uint
	nextAssignmentID uint
	nextSubmissionID uint
	nextMessageID    uint
	nextRequestID    uint

	// Error injection hooks.
	userCreateErr       error
	enrollmentCreateErr error
	submissionCreateErr error
	updateGradeErr      error

	// One-shot lookup misses, used to force the insert path in the
	// race-convergence tests.
	enrollmentGetMiss bool
	submissionGetMiss bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[string]*models.User),
		courses:     make(map[uint]*models.Course),
		enrollments: make(map[string]*models.Enrollment),
		assignments: make(map[uint]*models.Assignment),
		submissions: make(map[uint]*models.Submission),
		messages:    make(map[uint]*models.Message),
		requests:    make(map[uint]*models.RoleRequest),
	}
}

func (m *mockRepository) User() repositories.UserRepository               { return &mockUserRepo{m} }
func (m *mockRepository) RoleRequest() repositories.RoleRequestRepository { return &mockRoleRequestRepo{m} }
func (m *mockRepository) Course() repositories.CourseRepository           { return &mockCourseRepo{m} }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository   { return &mockEnrollmentRepo{m} }
func (m *mockRepository) Assignment() repositories.AssignmentRepository   { return &mockAssignmentRepo{m} }
func (m *mockRepository) Submission() repositories.SubmissionRepository   { return &mockSubmissionRepo{m} }
func (m *mockRepository) Message() repositories.MessageRepository         { return &mockMessageRepo{m} }
func (m *mockRepository) Gradebook() repositories.GradebookRepository     { return &mockGradebookRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// seedUser inserts a user directly, returning its id.
func (m *mockRepository) seedUser(email string, role models.UserRole) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{
		ID:    uuid.New().String(),
		Email: strings.ToLower(email),
		Role:  role,
	}
	m.users[user.ID] = user
	return user
}

func (m *mockRepository) seedCourse(ownerID, title string) *models.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCourseID++
	course := &models.Course{ID: m.nextCourseID, Title: title, OwnerID: ownerID}
	m.courses[course.ID] = course
	return course
}

func (m *mockRepository) seedAssignment(courseID uint, createdBy string, maxPoints int) *models.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAssignmentID++
	assignment := &models.Assignment{
		ID:        m.nextAssignmentID,
		CourseID:  courseID,
		Title:     fmt.Sprintf("assignment-%d", m.nextAssignmentID),
		MaxPoints: maxPoints,
		CreatedBy: createdBy,
	}
	m.assignments[assignment.ID] = assignment
	return assignment
}

// ===== user repository =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if user, ok := r.m.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, user := range r.m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.userCreateErr != nil {
		err := r.m.userCreateErr
		r.m.userCreateErr = nil
		return err
	}
	for _, existing := range r.m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	copied := *user
	r.m.users[user.ID] = &copied
	return nil
}

func (r *mockUserRepo) UpdateRole(_ context.Context, id string, role models.UserRole) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Role = role
	return nil
}

func (r *mockUserRepo) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r *mockUserRepo) List(_ context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, user := range r.m.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.Query != "" && !strings.Contains(user.Email, strings.ToLower(filters.Query)) {
			continue
		}
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) ListByRole(_ context.Context, role models.UserRole) ([]*models.User, error) {
	roleFilter := role
	users, _, err := r.List(context.Background(), repositories.UserFilters{Role: &roleFilter})
	return users, err
}

// ===== role request repository =====

type mockRoleRequestRepo struct{ m *mockRepository }

func (r *mockRoleRequestRepo) Create(_ context.Context, req *models.RoleRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextRequestID++
	req.ID = r.m.nextRequestID
	copied := *req
	r.m.requests[req.ID] = &copied
	return nil
}

func (r *mockRoleRequestRepo) GetByID(_ context.Context, id uint) (*models.RoleRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if req, ok := r.m.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockRoleRequestRepo) ListPending(_ context.Context) ([]*models.RoleRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.RoleRequest
	for _, req := range r.m.requests {
		if req.Status == models.RoleRequestPending {
			copied := *req
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockRoleRequestRepo) ListByUser(_ context.Context, userID string) ([]*models.RoleRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.RoleRequest
	for _, req := range r.m.requests {
		if req.UserID == userID {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockRoleRequestRepo) Update(_ context.Context, req *models.RoleRequest) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.requests[req.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *req
	r.m.requests[req.ID] = &copied
	return nil
}

// ===== course repository =====

type mockCourseRepo struct{ m *mockRepository }

func (r *mockCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextCourseID++
	course.ID = r.m.nextCourseID
	copied := *course
	r.m.courses[course.ID] = &copied
	return nil
}

func (r *mockCourseRepo) GetByID(_ context.Context, id uint) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if course, ok := r.m.courses[id]; ok {
		copied := *course
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockCourseRepo) Update(_ context.Context, course *models.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *course
	r.m.courses[course.ID] = &copied
	return nil
}

func (r *mockCourseRepo) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.courses, id)
	return nil
}

func (r *mockCourseRepo) List(_ context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Course
	for _, course := range r.m.courses {
		if filters.Query != "" && !strings.Contains(strings.ToLower(course.Title), strings.ToLower(filters.Query)) {
			continue
		}
		copied := *course
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockCourseRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Course
	for _, course := range r.m.courses {
		if course.OwnerID == ownerID {
			copied := *course
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ===== enrollment repository =====

type mockEnrollmentRepo struct{ m *mockRepository }

func enrollmentKey(courseID uint, userID string) string {
	return fmt.Sprintf("%d/%s", courseID, userID)
}

func (r *mockEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.enrollmentCreateErr != nil {
		err := r.m.enrollmentCreateErr
		r.m.enrollmentCreateErr = nil
		return err
	}
	key := enrollmentKey(enrollment.CourseID, enrollment.UserID)
	if _, ok := r.m.enrollments[key]; ok {
		return repositories.ErrDuplicateKey
	}
	enrollment.ID = uint(len(r.m.enrollments) + 1)
	copied := *enrollment
	r.m.enrollments[key] = &copied
	return nil
}

func (r *mockEnrollmentRepo) Get(_ context.Context, courseID uint, userID string) (*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.enrollmentGetMiss {
		r.m.enrollmentGetMiss = false
		return nil, repositories.ErrNotFound
	}
	if enrollment, ok := r.m.enrollments[enrollmentKey(courseID, userID)]; ok {
		copied := *enrollment
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockEnrollmentRepo) Delete(_ context.Context, courseID uint, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	key := enrollmentKey(courseID, userID)
	if _, ok := r.m.enrollments[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.enrollments, key)
	return nil
}

func (r *mockEnrollmentRepo) ListByCourse(_ context.Context, courseID uint) ([]*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Enrollment
	for _, enrollment := range r.m.enrollments {
		if enrollment.CourseID == courseID {
			copied := *enrollment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Enrollment
	for _, enrollment := range r.m.enrollments {
		if enrollment.UserID == userID {
			copied := *enrollment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockEnrollmentRepo) CountByCourse(_ context.Context, courseID uint) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, enrollment := range r.m.enrollments {
		if enrollment.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

// ===== assignment repository =====

type mockAssignmentRepo struct{ m *mockRepository }

func (r *mockAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextAssignmentID++
	assignment.ID = r.m.nextAssignmentID
	copied := *assignment
	r.m.assignments[assignment.ID] = &copied
	return nil
}

func (r *mockAssignmentRepo) GetByID(_ context.Context, id uint) (*models.Assignment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if assignment, ok := r.m.assignments[id]; ok {
		copied := *assignment
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.assignments[assignment.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *assignment
	r.m.assignments[assignment.ID] = &copied
	return nil
}

func (r *mockAssignmentRepo) Delete(_ context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.assignments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.assignments, id)
	return nil
}

func (r *mockAssignmentRepo) ListByCourse(_ context.Context, courseID uint) ([]*models.Assignment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Assignment
	for _, assignment := range r.m.assignments {
		if assignment.CourseID == courseID {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== submission repository =====

type mockSubmissionRepo struct{ m *mockRepository }

func (r *mockSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.submissionCreateErr != nil {
		err := r.m.submissionCreateErr
		r.m.submissionCreateErr = nil
		return err
	}
	for _, existing := range r.m.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.UserID == submission.UserID {
			return repositories.ErrDuplicateKey
		}
	}
	r.m.nextSubmissionID++
	submission.ID = r.m.nextSubmissionID
	copied := *submission
	r.m.submissions[submission.ID] = &copied
	return nil
}

func (r *mockSubmissionRepo) GetByID(_ context.Context, id uint) (*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if submission, ok := r.m.submissions[id]; ok {
		copied := *submission
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockSubmissionRepo) GetByAssignmentAndUser(_ context.Context, assignmentID uint, userID string) (*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.submissionGetMiss {
		r.m.submissionGetMiss = false
		return nil, repositories.ErrNotFound
	}
	for _, submission := range r.m.submissions {
		if submission.AssignmentID == assignmentID && submission.UserID == userID {
			copied := *submission
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockSubmissionRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Submission
	for _, submission := range r.m.submissions {
		if submission.AssignmentID == assignmentID {
			copied := *submission
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockSubmissionRepo) ListByUser(_ context.Context, userID string) ([]*models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Submission
	for _, submission := range r.m.submissions {
		if submission.UserID == userID {
			copied := *submission
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockSubmissionRepo) UpdateGrade(_ context.Context, id uint, grade repositories.GradeUpdate) error {
	r.m.mu.Lock()
	if r.m.updateGradeErr != nil {
		err := r.m.updateGradeErr
		r.m.updateGradeErr = nil
		r.m.mu.Unlock()
		return err
	}
	r.m.mu.Unlock()
	return r.applyGrade(id, grade, true)
}

func (r *mockSubmissionRepo) UpdateGradeRequired(_ context.Context, id uint, grade repositories.GradeUpdate) error {
	return r.applyGrade(id, grade, false)
}

func (r *mockSubmissionRepo) applyGrade(id uint, grade repositories.GradeUpdate, full bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	submission, ok := r.m.submissions[id]
	if !ok {
		return repositories.ErrNotFound
	}
	score := grade.Score
	submission.Score = &score
	submission.GradedBy = &grade.GradedBy
	submission.Status = models.SubmissionGraded
	if full {
		submission.Feedback = grade.Feedback
		submission.LetterGrade = grade.LetterGrade
	}
	return nil
}

// ===== message repository =====

type mockMessageRepo struct{ m *mockRepository }

func (r *mockMessageRepo) Create(_ context.Context, message *models.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextMessageID++
	message.ID = r.m.nextMessageID
	copied := *message
	r.m.messages[message.ID] = &copied
	return nil
}

func (r *mockMessageRepo) CreateBatch(ctx context.Context, messages []*models.Message) error {
	for _, message := range messages {
		if err := r.Create(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func (r *mockMessageRepo) GetByID(_ context.Context, id uint) (*models.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if message, ok := r.m.messages[id]; ok {
		copied := *message
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *mockMessageRepo) ListInbox(_ context.Context, recipientID string, filters repositories.MessageFilters) ([]*models.Message, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Message
	for _, message := range r.m.messages {
		if message.RecipientID != recipientID {
			continue
		}
		if filters.Unread && message.ReadAt != nil {
			continue
		}
		copied := *message
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockMessageRepo) MarkRead(_ context.Context, id uint, recipientID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	message, ok := r.m.messages[id]
	if !ok || message.RecipientID != recipientID {
		return repositories.ErrNotFound
	}
	now := time.Now()
	message.ReadAt = &now
	return nil
}

// ===== gradebook repository =====

type mockGradebookRepo struct{ m *mockRepository }

func (r *mockGradebookRepo) CourseGradebook(_ context.Context, courseID uint) ([]*repositories.GradebookRow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var rows []*repositories.GradebookRow
	for _, enrollment := range r.m.enrollments {
		if enrollment.CourseID != courseID {
			continue
		}
		student := r.m.users[enrollment.UserID]
		for _, assignment := range r.m.assignments {
			if assignment.CourseID != courseID {
				continue
			}
			row := &repositories.GradebookRow{
				StudentID:    enrollment.UserID,
				AssignmentID: assignment.ID,
				Assignment:   assignment.Title,
				MaxPoints:    assignment.MaxPoints,
			}
			if student != nil {
				row.StudentEmail = student.Email
			}
			for _, submission := range r.m.submissions {
				if submission.AssignmentID == assignment.ID && submission.UserID == enrollment.UserID {
					row.Score = submission.Score
					row.LetterGrade = submission.LetterGrade
				}
			}
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StudentEmail != rows[j].StudentEmail {
			return rows[i].StudentEmail < rows[j].StudentEmail
		}
		return rows[i].AssignmentID < rows[j].AssignmentID
	})
	return rows, nil
}

// ===== shared test helpers =====

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestIdentity(repo repositories.Repository) IdentityService {
	return NewIdentityService(repo, config.DefaultDemoUsers(), testLogger())
}

func newTestValidator(t *testing.T) *validator.Validator {
	t.Helper()
	return validator.New()
}
