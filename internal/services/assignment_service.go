package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type assignmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *assignmentService) Create(ctx context.Context, courseID uint, req *CreateAssignmentRequest, actor *models.User) (*models.Assignment, error) {
	s.logger.Info("Creating assignment", "course_id", courseID, "creator_id", actor.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateAssignmentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// Instructors may only add assignments to their own courses.
	if actor.Role != models.RoleAdmin && course.OwnerID != actor.ID {
		return nil, NewPermissionError(actor.ID, "assignment", "create", "not course owner")
	}

	assignment := &models.Assignment{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		MaxPoints:   req.MaxPoints,
		DueDate:     req.DueDate,
		CreatedBy:   actor.ID,
	}

	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return assignment, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID uint) ([]*models.Assignment, error) {
	if _, err := s.repo.Course().GetByID(ctx, courseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return s.repo.Assignment().ListByCourse(ctx, courseID)
}

func (s *assignmentService) Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, actor *models.User) (*models.Assignment, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.canModify(assignment, actor) {
		return nil, NewPermissionError(actor.ID, "assignment", "update", "not creator or insufficient permissions")
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = req.Description
	}
	if req.MaxPoints != nil {
		assignment.MaxPoints = *req.MaxPoints
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate
	}

	if err := s.repo.Assignment().Update(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return assignment, nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint, actor *models.User) error {
	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.canModify(assignment, actor) {
		return NewPermissionError(actor.ID, "assignment", "delete", "not creator or insufficient permissions")
	}

	s.logger.Info("Deleting assignment", "assignment_id", id, "actor_id", actor.ID)
	return s.repo.Assignment().Delete(ctx, id)
}

func (s *assignmentService) canModify(assignment *models.Assignment, actor *models.User) bool {
	return actor.Role == models.RoleAdmin || assignment.CreatedBy == actor.ID
}
