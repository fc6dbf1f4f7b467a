package repositories

import (
	"context"

	"github.com/openedu-labs/lms-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string           // Search query for name or email
	Role   *models.UserRole // Filter by role
	Limit  int              // Page size
	Offset int              // Offset for pagination
}

// UserRepository owns the canonical user table. Identifier resolution
// depends on GetByEmail being case-insensitive and Create surfacing
// uniqueness conflicts as ErrDuplicateKey.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	Create(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
}

// RoleRequestRepository stores role elevation requests.
type RoleRequestRepository interface {
	Create(ctx context.Context, req *models.RoleRequest) error
	GetByID(ctx context.Context, id uint) (*models.RoleRequest, error)
	ListPending(ctx context.Context) ([]*models.RoleRequest, error)
	ListByUser(ctx context.Context, userID string) ([]*models.RoleRequest, error)
	Update(ctx context.Context, req *models.RoleRequest) error
}
