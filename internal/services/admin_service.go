package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type adminService struct {
	repo      repositories.Repository
	identity  IdentityService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAdminService(repo repositories.Repository, identity IdentityService, logger *slog.Logger, v *validator.Validator) AdminService {
	return &adminService{
		repo:      repo,
		identity:  identity,
		logger:    logger,
		validator: v,
	}
}

func (s *adminService) ListUsers(ctx context.Context, query string, role string, page, size int) ([]*models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.UserFilters{
		Query:  query,
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if role != "" {
		r := models.NormalizeRole(role)
		filters.Role = &r
	}

	return s.repo.User().List(ctx, filters)
}

// GetUser accepts any identifier token shape.
func (s *adminService) GetUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.identity.GetUser(ctx, userID)
}

// UpdateRole changes a user's role. The new role string is normalized at
// the boundary; the change is observed by the target's next request.
func (s *adminService) UpdateRole(ctx context.Context, userToken string, req *UpdateRoleRequest, actor *models.User) (*models.User, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.GetUser(ctx, userToken)
	if err != nil {
		return nil, err
	}

	role := models.NormalizeRole(req.Role)
	if err := s.repo.User().UpdateRole(ctx, user.ID, role); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("Role updated",
		"user_id", user.ID,
		"old_role", user.Role,
		"new_role", role,
		"updated_by", actor.ID)

	user.Role = role
	return user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userToken string, actor *models.User) error {
	user, err := s.GetUser(ctx, userToken)
	if err != nil {
		return err
	}

	if user.ID == actor.ID {
		return NewBusinessRuleError("self_delete", "admins cannot delete their own account", map[string]interface{}{
			"user_id": user.ID,
		})
	}

	if err := s.repo.User().Delete(ctx, user.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", user.ID, "deleted_by", actor.ID)
	return nil
}

// RequestRole files an elevation request for the acting user.
func (s *adminService) RequestRole(ctx context.Context, req *CreateRoleRequestRequest, actor *models.User) (*models.RoleRequest, error) {
	if errs := s.validator.GetBusinessValidator().ValidateRoleRequest(req, actor.Role); len(errs) > 0 {
		return nil, errs
	}

	request := &models.RoleRequest{
		UserID:        actor.ID,
		RequestedRole: models.NormalizeRole(req.RequestedRole),
		Status:        models.RoleRequestPending,
		Reason:        req.Reason,
	}

	if err := s.repo.RoleRequest().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create role request: %w", err)
	}

	s.logger.Info("Role request filed",
		"user_id", actor.ID,
		"requested_role", request.RequestedRole)

	return request, nil
}

func (s *adminService) ListPendingRoleRequests(ctx context.Context) ([]*models.RoleRequest, error) {
	return s.repo.RoleRequest().ListPending(ctx)
}

// DecideRoleRequest approves or rejects a pending request. Approval
// updates the user's role in the same transaction so the grant is visible
// on the user's next authorization check.
func (s *adminService) DecideRoleRequest(ctx context.Context, requestID uint, decision *RoleRequestDecision, actor *models.User) (*models.RoleRequest, error) {
	request, err := s.repo.RoleRequest().GetByID(ctx, requestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrRoleRequestNotFound
		}
		return nil, err
	}

	if request.Status != models.RoleRequestPending {
		return nil, ErrRoleRequestDecided
	}

	now := time.Now()
	request.DecidedBy = &actor.ID
	request.DecidedAt = &now
	if decision.Approve {
		request.Status = models.RoleRequestApproved
	} else {
		request.Status = models.RoleRequestRejected
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.RoleRequest().Update(ctx, request); err != nil {
			return err
		}
		if decision.Approve {
			return txRepo.User().UpdateRole(ctx, request.UserID, request.RequestedRole)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decide role request: %w", err)
	}

	s.logger.Info("Role request decided",
		"request_id", requestID,
		"status", request.Status,
		"decided_by", actor.ID)

	return request, nil
}
