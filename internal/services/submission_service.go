package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openedu-labs/lms-service/internal/events"
	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type submissionService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewSubmissionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) SubmissionService {
	return &submissionService{
		repo:           repo,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// Submit records an answer. Idempotent per (assignment, user): a repeat
// attempt, or an insert losing a race to one, returns the existing row
// with AlreadyExists set.
func (s *submissionService) Submit(ctx context.Context, assignmentID uint, req *CreateSubmissionRequest, actor *models.User) (*SubmissionResponse, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Assignment().GetByID(ctx, assignmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if existing, err := s.repo.Submission().GetByAssignmentAndUser(ctx, assignmentID, actor.ID); err == nil {
		return &SubmissionResponse{Submission: existing, AlreadyExists: true}, nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	content, err := json.Marshal(req.Content)
	if err != nil {
		return nil, NewValidationError("content", "content must be JSON-serializable", nil)
	}

	submission := &models.Submission{
		AssignmentID: assignmentID,
		UserID:       actor.ID,
		Content:      content,
		Status:       models.SubmissionSubmitted,
	}

	err = s.repo.Submission().Create(ctx, submission)
	if err == nil {
		s.logger.Info("Submission created", "assignment_id", assignmentID, "user_id", actor.ID)
		return &SubmissionResponse{Submission: submission, AlreadyExists: false}, nil
	}

	if repositories.IsDuplicateKeyError(err) {
		existing, getErr := s.repo.Submission().GetByAssignmentAndUser(ctx, assignmentID, actor.ID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to re-query submission after conflict: %w", getErr)
		}
		return &SubmissionResponse{Submission: existing, AlreadyExists: true}, nil
	}

	return nil, fmt.Errorf("failed to create submission: %w", err)
}

func (s *submissionService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	if !s.canView(submission, actor) {
		return nil, NewPermissionError(actor.ID, "submission", "read", "not owner or insufficient permissions")
	}

	return submission, nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint, actor *models.User) ([]*models.Submission, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if actor.Role != models.RoleAdmin && assignment.CreatedBy != actor.ID {
		return nil, NewPermissionError(actor.ID, "submission", "list", "not assignment creator or insufficient permissions")
	}

	return s.repo.Submission().ListByAssignment(ctx, assignmentID)
}

func (s *submissionService) ListMine(ctx context.Context, actor *models.User) ([]*models.Submission, error) {
	return s.repo.Submission().ListByUser(ctx, actor.ID)
}

// Grade records a grade. Admins grade anything; instructors only grade
// submissions to assignments they created. On a degraded schema (optional
// grade columns missing) the write is retried once without them.
func (s *submissionService) Grade(ctx context.Context, submissionID uint, req *GradeRequest, actor *models.User) (*GradeResponse, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, submission.AssignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if err := s.checkGradingPermission(assignment, actor); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateGrade(req, assignment.MaxPoints); len(errs) > 0 {
		return nil, errs
	}

	grade := repositories.GradeUpdate{
		Score:       req.Score,
		Feedback:    req.Feedback,
		LetterGrade: req.LetterGrade,
		GradedBy:    actor.ID,
	}

	degraded := false
	err = s.repo.Submission().UpdateGrade(ctx, submissionID, grade)
	if err != nil && repositories.IsUndefinedColumnError(err) {
		s.logger.Warn("grade write hit a degraded schema, retrying without optional columns",
			"submission_id", submissionID,
			"error", err)
		degraded = true
		err = s.repo.Submission().UpdateGradeRequired(ctx, submissionID, grade)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update grade: %w", err)
	}

	graded, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload graded submission: %w", err)
	}

	s.logger.Info("Submission graded",
		"submission_id", submissionID,
		"score", req.Score,
		"grader_id", actor.ID)

	s.publishGradedEvent(ctx, graded, actor)

	return &GradeResponse{Submission: graded, DegradedWrite: degraded}, nil
}

func (s *submissionService) checkGradingPermission(assignment *models.Assignment, actor *models.User) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleInstructor && assignment.CreatedBy == actor.ID {
		return nil
	}
	return NewPermissionError(actor.ID, "submission", "grade", "not assignment creator or insufficient permissions")
}

func (s *submissionService) canView(submission *models.Submission, actor *models.User) bool {
	if submission.UserID == actor.ID || actor.Role == models.RoleAdmin {
		return true
	}
	return submission.Assignment != nil && submission.Assignment.CreatedBy == actor.ID
}

func (s *submissionService) publishGradedEvent(ctx context.Context, submission *models.Submission, grader *models.User) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent("submission.graded", map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.UserID,
		"graded_by":     grader.ID,
		"score":         submission.Score,
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish graded event", "error", err, "submission_id", submission.ID)
	}
}
