package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
)

// ErrorResponse is the failure envelope returned on every error path.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps successful payloads.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every resource handler shares.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c.Request.Context(), h.logger).Error(msg, args...)
}

// parseIDParam parses a positive numeric path parameter, writing the 400
// response itself on failure.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// authContext assembles the identifier candidates for the authorizer:
// verified session id first, explicit body/query fields next, the demo
// fallback header last.
func (h *BaseHandler) authContext(c *gin.Context, explicit ...*string) services.AuthContext {
	sessionID, _ := GetUserIDFromContext(c)
	ac := services.AuthContext{
		SessionUserID: sessionID,
		FallbackID:    c.GetHeader("X-User-ID"),
	}
	for _, field := range explicit {
		if field != nil && *field != "" {
			ac.Explicit = append(ac.Explicit, *field)
		}
	}
	return ac
}

// denyDecision writes the authorizer's failure verbatim.
func (h *BaseHandler) denyDecision(c *gin.Context, decision *services.AuthDecision) {
	c.JSON(decision.Status, ErrorResponse{Message: decision.Message})
}

// handleServiceError maps service-layer errors onto the HTTP contract.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrMissingIdentifier):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing identifier"})
	case errors.Is(err, services.ErrCannotCanonicalize):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Cannot canonicalize identifier"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Course not found"})
	case errors.Is(err, services.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Assignment not found"})
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Submission not found"})
	case errors.Is(err, services.ErrEnrollmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Enrollment not found"})
	case errors.Is(err, services.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Message not found"})
	case errors.Is(err, services.ErrRoleRequestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Role request not found"})
	case errors.Is(err, services.ErrRoleRequestDecided):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Role request already decided"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
