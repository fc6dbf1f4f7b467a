package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	identity  IdentityService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCourseService(repo repositories.Repository, identity IdentityService, logger *slog.Logger, v *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		identity:  identity,
		logger:    logger,
		validator: v,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, actor *models.User) (*CourseResponse, error) {
	s.logger.Info("Creating course", "owner_id", actor.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, errs
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		Published:   req.Published,
		OwnerID:     actor.ID,
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	return s.toResponse(ctx, course, actor), nil
}

func (s *courseService) GetByID(ctx context.Context, id uint, actor *models.User) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return s.toResponse(ctx, course, actor), nil
}

func (s *courseService) List(ctx context.Context, query string, page, size int, actor *models.User) (*CourseListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.CourseFilters{
		Query:  query,
		Limit:  size,
		Offset: (page - 1) * size,
	}

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	responses := make([]*CourseResponse, len(courses))
	for i, course := range courses {
		responses[i] = s.toResponse(ctx, course, actor)
	}

	return &CourseListResponse{
		Courses: responses,
		Total:   total,
		Page:    page,
		Size:    size,
	}, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, actor *models.User) (*CourseResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !s.canModify(course, actor) {
		return nil, NewPermissionError(actor.ID, "course", "update", "not owner or insufficient permissions")
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Subject != nil {
		course.Subject = req.Subject
	}
	if req.Published != nil {
		course.Published = *req.Published
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.toResponse(ctx, course, actor), nil
}

// Delete removes a course. Beyond the capability table, deletion is
// limited to admins and the course's own owner.
func (s *courseService) Delete(ctx context.Context, id uint, actor *models.User) error {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return err
	}

	if !s.canModify(course, actor) {
		return NewPermissionError(actor.ID, "course", "delete", "not owner or insufficient permissions")
	}

	s.logger.Info("Deleting course", "course_id", id, "actor_id", actor.ID)
	return s.repo.Course().Delete(ctx, id)
}

// Enroll adds a user to a course. Idempotent: an existing enrollment, or
// an insert losing a race to one, returns success with AlreadyEnrolled.
func (s *courseService) Enroll(ctx context.Context, courseID uint, userToken string, actor *models.User) (*EnrollmentResponse, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	userID, err := s.resolveEnrollee(ctx, userToken, actor)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.Enrollment().Get(ctx, courseID, userID); err == nil {
		return &EnrollmentResponse{Enrollment: existing, AlreadyEnrolled: true}, nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	enrollment := &models.Enrollment{CourseID: courseID, UserID: userID}
	err = s.repo.Enrollment().Create(ctx, enrollment)
	if err == nil {
		s.logger.Info("User enrolled", "course_id", courseID, "user_id", userID)
		return &EnrollmentResponse{Enrollment: enrollment, AlreadyEnrolled: false}, nil
	}

	if repositories.IsDuplicateKeyError(err) {
		existing, getErr := s.repo.Enrollment().Get(ctx, courseID, userID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to re-query enrollment after conflict: %w", getErr)
		}
		return &EnrollmentResponse{Enrollment: existing, AlreadyEnrolled: true}, nil
	}

	return nil, fmt.Errorf("failed to enroll: %w", err)
}

func (s *courseService) Unenroll(ctx context.Context, courseID uint, userToken string, actor *models.User) error {
	userID, err := s.resolveEnrollee(ctx, userToken, actor)
	if err != nil {
		return err
	}

	if err := s.repo.Enrollment().Delete(ctx, courseID, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	return nil
}

func (s *courseService) ListEnrollments(ctx context.Context, courseID uint, actor *models.User) ([]*models.Enrollment, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !s.canModify(course, actor) && actor.Role != models.RoleInstructor {
		return nil, NewPermissionError(actor.ID, "course", "list_enrollments", "not owner or insufficient permissions")
	}

	return s.repo.Enrollment().ListByCourse(ctx, courseID)
}

func (s *courseService) ListForStudent(ctx context.Context, actor *models.User) ([]*models.Enrollment, error) {
	return s.repo.Enrollment().ListByUser(ctx, actor.ID)
}

// ListOwned returns the courses the actor created.
func (s *courseService) ListOwned(ctx context.Context, actor *models.User) ([]*CourseResponse, error) {
	courses, err := s.repo.Course().ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned courses: %w", err)
	}

	out := make([]*CourseResponse, 0, len(courses))
	for _, course := range courses {
		out = append(out, s.toResponse(ctx, course, actor))
	}
	return out, nil
}

// resolveEnrollee canonicalizes the enrollment target; an empty token
// means the actor enrolls themselves.
func (s *courseService) resolveEnrollee(ctx context.Context, userToken string, actor *models.User) (string, error) {
	if userToken == "" {
		return actor.ID, nil
	}
	return s.identity.Resolve(ctx, userToken)
}

func (s *courseService) canModify(course *models.Course, actor *models.User) bool {
	return actor.Role == models.RoleAdmin || course.OwnerID == actor.ID
}

func (s *courseService) toResponse(ctx context.Context, course *models.Course, actor *models.User) *CourseResponse {
	enrolled, err := s.repo.Enrollment().CountByCourse(ctx, course.ID)
	if err != nil {
		s.logger.Warn("failed to count enrollments", "course_id", course.ID, "error", err)
	}

	canModify := actor != nil && s.canModify(course, actor)
	return &CourseResponse{
		Course:    course,
		CanEdit:   canModify,
		CanDelete: canModify,
		Enrolled:  enrolled,
	}
}
