package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/openedu-labs/lms-service/internal/cache"
	"github.com/openedu-labs/lms-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user        repositories.UserRepository
	roleRequest repositories.RoleRequestRepository
	course      repositories.CourseRepository
	enrollment  repositories.EnrollmentRepository
	assignment  repositories.AssignmentRepository
	submission  repositories.SubmissionRepository
	message     repositories.MessageRepository
	gradebook   repositories.GradebookRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.roleRequest = NewRoleRequestPostgreSQL(config.DB)
	repo.course = NewCoursePostgreSQL(config.DB, cacheManager)
	repo.enrollment = NewEnrollmentPostgreSQL(config.DB)
	repo.assignment = NewAssignmentPostgreSQL(config.DB)
	repo.submission = NewSubmissionPostgreSQL(config.DB)
	repo.message = NewMessagePostgreSQL(config.DB)
	repo.gradebook = NewGradebookPostgreSQL(config.DB, cacheManager)

	return repo
}

// User returns the user repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// RoleRequest returns the role request repository
func (r *PostgreSQLRepository) RoleRequest() repositories.RoleRequestRepository {
	return r.roleRequest
}

// Course returns the course repository
func (r *PostgreSQLRepository) Course() repositories.CourseRepository {
	return r.course
}

// Enrollment returns the enrollment repository
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository {
	return r.enrollment
}

// Assignment returns the assignment repository
func (r *PostgreSQLRepository) Assignment() repositories.AssignmentRepository {
	return r.assignment
}

// Submission returns the submission repository
func (r *PostgreSQLRepository) Submission() repositories.SubmissionRepository {
	return r.submission
}

// Message returns the message repository
func (r *PostgreSQLRepository) Message() repositories.MessageRepository {
	return r.message
}

// Gradebook returns the gradebook repository
func (r *PostgreSQLRepository) Gradebook() repositories.GradebookRepository {
	return r.gradebook
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.user = NewUserPostgreSQL(tx)
		txRepo.roleRequest = NewRoleRequestPostgreSQL(tx)
		txRepo.course = NewCoursePostgreSQL(tx, r.cacheManager)
		txRepo.enrollment = NewEnrollmentPostgreSQL(tx)
		txRepo.assignment = NewAssignmentPostgreSQL(tx)
		txRepo.submission = NewSubmissionPostgreSQL(tx)
		txRepo.message = NewMessagePostgreSQL(tx)
		txRepo.gradebook = NewGradebookPostgreSQL(tx, r.cacheManager)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// Manager implements the repositories.RepositoryManager interface
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) *Manager {
	return &Manager{config: config}
}

// Initialize initializes all repositories and connections
func (rm *Manager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

// GetRepository returns the repository instance
func (rm *Manager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck pings the underlying connections
func (rm *Manager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

// Shutdown closes the underlying connections
func (rm *Manager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
