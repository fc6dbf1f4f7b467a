package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/openedu-labs/lms-service/internal/events"
	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/repositories"
	"github.com/openedu-labs/lms-service/internal/validator"
)

// ServiceManager wires and owns all service instances.
type ServiceManager interface {
	Identity() IdentityService
	Authorizer() Authorizer
	Course() CourseService
	Assignment() AssignmentService
	Submission() SubmissionService
	Message() MessageService
	Admin() AdminService
	Gradebook() GradebookService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceManagerConfig holds shared service configuration.
type ServiceManagerConfig struct {
	DemoUsers      []models.DemoUser
	EventPublisher events.EventPublisher
}

type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	identityService   IdentityService
	authorizer        Authorizer
	courseService     CourseService
	assignmentService AssignmentService
	submissionService SubmissionService
	messageService    MessageService
	adminService      AdminService
	gradebookService  GradebookService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.repo == nil {
		return fmt.Errorf("repository is required")
	}
	if sm.validator == nil {
		return fmt.Errorf("validator is required")
	}

	sm.identityService = NewIdentityService(sm.repo, sm.config.DemoUsers, sm.logger)
	sm.authorizer = NewAuthorizer(sm.identityService, sm.logger)
	sm.courseService = NewCourseService(sm.repo, sm.identityService, sm.logger, sm.validator)
	sm.assignmentService = NewAssignmentService(sm.repo, sm.logger, sm.validator)
	sm.submissionService = NewSubmissionService(sm.repo, sm.logger, sm.validator, sm.config.EventPublisher)
	sm.messageService = NewMessageService(sm.repo, sm.identityService, sm.logger, sm.validator, sm.config.EventPublisher)
	sm.adminService = NewAdminService(sm.repo, sm.identityService, sm.logger, sm.validator)
	sm.gradebookService = NewGradebookService(sm.repo, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("service manager initialized")
	return nil
}

func (sm *serviceManager) Identity() IdentityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.identityService
}

func (sm *serviceManager) Authorizer() Authorizer {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.authorizer
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.courseService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.assignmentService
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.submissionService
}

func (sm *serviceManager) Message() MessageService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.messageService
}

func (sm *serviceManager) Admin() AdminService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.adminService
}

func (sm *serviceManager) Gradebook() GradebookService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.gradebookService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.shutdown {
		return fmt.Errorf("service manager not ready")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	if sm.config.EventPublisher != nil {
		if err := sm.config.EventPublisher.Close(); err != nil {
			sm.logger.Error("failed to close event publisher", "error", err)
		}
	}

	sm.logger.Info("service manager shut down")
	return nil
}
