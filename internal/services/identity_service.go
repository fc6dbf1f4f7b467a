package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
)

type identityService struct {
	repo      repositories.Repository
	demoUsers []models.DemoUser
	logger    *slog.Logger
}

func NewIdentityService(repo repositories.Repository, demoUsers []models.DemoUser, logger *slog.Logger) IdentityService {
	return &identityService{
		repo:      repo,
		demoUsers: demoUsers,
		logger:    logger,
	}
}

// Resolve canonicalizes an identifier token:
//   - email (contains '@'): case-insensitive lookup, lazily creating the
//     row on first sight with the demo table's role (default student)
//   - UUID shape (contains '-'): returned as-is; existence is checked by
//     the authorizer's role lookup
//   - anything else: legacy numeric demo id, bridged through the static
//     demo table to its email
func (s *identityService) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingIdentifier
	}

	if strings.Contains(token, "@") {
		return s.resolveEmail(ctx, token)
	}

	if strings.Contains(token, "-") {
		return token, nil
	}

	for _, demo := range s.demoUsers {
		if demo.LegacyID == token {
			return s.resolveEmail(ctx, demo.Email)
		}
	}

	return "", fmt.Errorf("%w: %q", ErrCannotCanonicalize, token)
}

func (s *identityService) resolveEmail(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.User().GetByEmail(ctx, email)
	if err == nil {
		return user.ID, nil
	}
	if !repositories.IsNotFoundError(err) {
		return "", fmt.Errorf("failed to resolve email: %w", err)
	}

	// First sight of this email: create the row with the demo table's
	// role, defaulting to student.
	newUser := &models.User{
		Email: email,
		Role:  s.defaultRoleFor(email),
	}

	createErr := s.repo.User().Create(ctx, newUser)
	if createErr == nil {
		s.logger.Info("user created on first resolution",
			"email", email,
			"role", newUser.Role)
		return newUser.ID, nil
	}

	if !repositories.IsDuplicateKeyError(createErr) {
		return "", fmt.Errorf("failed to create user: %w", createErr)
	}

	// A concurrent resolution raced ahead; converge on its row.
	existing, err := s.repo.User().GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to re-query user after conflict: %w", err)
	}
	return existing.ID, nil
}

func (s *identityService) defaultRoleFor(email string) models.UserRole {
	for _, demo := range s.demoUsers {
		if strings.EqualFold(demo.Email, email) {
			return demo.Role
		}
	}
	return models.RoleStudent
}

// RoleOf reads the stored role by canonical id. Always a live read; a
// role change must be observed by the very next authorization check.
func (s *identityService) RoleOf(ctx context.Context, userID string) (models.UserRole, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *identityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
