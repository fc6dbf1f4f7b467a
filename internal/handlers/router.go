package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/config"
	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type HandlerManager struct {
	serviceManager    services.ServiceManager
	courseHandler     *CourseHandler
	assignmentHandler *AssignmentHandler
	submissionHandler *SubmissionHandler
	messageHandler    *MessageHandler
	gradebookHandler  *GradebookHandler
	adminHandler      *AdminHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
	requireSession    bool
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	authorizer := serviceManager.Authorizer()

	return &HandlerManager{
		serviceManager:    serviceManager,
		courseHandler:     NewCourseHandler(serviceManager.Course(), authorizer, validator, logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), authorizer, validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), authorizer, validator, logger),
		messageHandler:    NewMessageHandler(serviceManager.Message(), authorizer, validator, logger),
		gradebookHandler:  NewGradebookHandler(serviceManager.Gradebook(), authorizer, logger),
		adminHandler:      NewAdminHandler(serviceManager.Admin(), authorizer, validator, logger),
		userHandler:       NewUserHandler(serviceManager.Admin(), authorizer, validator, logger),
		authMiddleware:    NewCasdoorAuthMiddleware(casdoorConfig, serviceManager.Identity()),
		requireSession:    casdoorConfig.RequireSession,
	}
}

// SetupRoutes sets up all API routes.
//
// Sessions are optional by default: a valid bearer token pins the acting
// identity, otherwise the handlers fall back to the explicit body fields
// and the X-User-ID header. Deployments that have fully moved to Casdoor
// set RequireSession to make the bearer token mandatory. Fine-grained
// role checks run inside the handlers through the authorizer, because
// the acting identity may come from the request body; route middleware
// only gates coarsely on the session role when one is present.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	if hm.requireSession {
		v1.Use(hm.authMiddleware.AuthMiddleware())
	} else {
		v1.Use(hm.authMiddleware.OptionalAuthMiddleware())
	}
	{
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/mine", hm.courseHandler.ListMyCourses)
			courses.GET("/owned", hm.courseHandler.ListOwnedCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.courseHandler.DeleteCourse)

			courses.POST("/:id/enroll", hm.courseHandler.Enroll)
			courses.DELETE("/:id/enroll", hm.courseHandler.Unenroll)
			courses.GET("/:id/enrollments", hm.courseHandler.ListEnrollments)

			courses.POST("/:id/assignments", hm.assignmentHandler.CreateAssignment)
			courses.GET("/:id/assignments", hm.assignmentHandler.ListAssignments)

			courses.GET("/:id/gradebook/export", hm.gradebookHandler.ExportGradebook)
		}

		assignments := v1.Group("/assignments")
		{
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
			assignments.PUT("/:id", hm.assignmentHandler.UpdateAssignment)
			assignments.DELETE("/:id", hm.assignmentHandler.DeleteAssignment)

			assignments.POST("/:id/submissions", hm.submissionHandler.Submit)
			assignments.GET("/:id/submissions", hm.submissionHandler.ListSubmissions)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("/mine", hm.submissionHandler.ListMySubmissions)
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.POST("/:id/grade", hm.submissionHandler.GradeSubmission)
		}

		messages := v1.Group("/messages")
		{
			messages.POST("", hm.messageHandler.SendMessage)
			messages.GET("", hm.messageHandler.Inbox)
			messages.POST("/broadcast", hm.messageHandler.BroadcastMessage)
			messages.POST("/:id/read", hm.messageHandler.MarkRead)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.Me)
			users.POST("/role-requests", hm.userHandler.RequestRole)
		}

		admin := v1.Group("/admin", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.GET("/users/:token", hm.adminHandler.GetUser)
			admin.PUT("/users/:token/role", hm.adminHandler.UpdateUserRole)
			admin.DELETE("/users/:token", hm.adminHandler.DeleteUser)

			admin.GET("/role-requests", hm.adminHandler.ListRoleRequests)
			admin.POST("/role-requests/:id", hm.adminHandler.DecideRoleRequest)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "lms-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})
}
