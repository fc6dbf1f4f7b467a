package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	authorizer   services.Authorizer
	validator    *validator.Validator
}

func NewAdminHandler(
	adminService services.AdminService,
	authorizer services.Authorizer,
	validator *validator.Validator,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		authorizer:   authorizer,
		validator:    validator,
	}
}

// ListUsers lists users with optional role filter and search
// @Summary List users
// @Tags admin
// @Produce json
// @Param q query string false "Search query"
// @Param role query string false "Role filter"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionAdminUsers)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))

	users, total, err := h.adminService.ListUsers(c.Request.Context(), c.Query("q"), c.Query("role"), page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"total":   total,
		"page":    page,
		"size":    size,
	})
}

// GetUser fetches a single user by any identifier form
// @Summary Get user
// @Tags admin
// @Produce json
// @Param token path string true "User identifier (uuid, email, or legacy id)"
// @Success 200 {object} models.User
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{token} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionAdminUsers)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	user, err := h.adminService.GetUser(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUserRole changes a user's role
// @Summary Update user role
// @Tags admin
// @Accept json
// @Produce json
// @Param token path string true "User identifier"
// @Param role body services.UpdateRoleRequest true "New role"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{token}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.UpdaterID), models.ActionAdminRoles)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	h.LogRequest(c, "Updating user role", "target", c.Param("token"), "role", req.Role, "actor_id", decision.User.ID)

	user, err := h.adminService.UpdateRole(c.Request.Context(), c.Param("token"), &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser deletes a user
// @Summary Delete user
// @Tags admin
// @Produce json
// @Param token path string true "User identifier"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{token} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionAdminUsers)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), c.Param("token"), decision.User); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ListRoleRequests lists pending role elevation requests
// @Summary List pending role requests
// @Tags admin
// @Produce json
// @Success 200 {array} models.RoleRequest
// @Failure 403 {object} ErrorResponse
// @Router /admin/role-requests [get]
func (h *AdminHandler) ListRoleRequests(c *gin.Context) {
	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionAdminRoles)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	requests, err := h.adminService.ListPendingRoleRequests(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

// DecideRoleRequest approves or rejects a pending role request
// @Summary Decide role request
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Role request ID"
// @Param decision body services.RoleRequestDecision true "Decision"
// @Success 200 {object} models.RoleRequest
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/role-requests/{id} [post]
func (h *AdminHandler) DecideRoleRequest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.RoleRequestDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.UpdaterID), models.ActionAdminRoles)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	request, err := h.adminService.DecideRoleRequest(c.Request.Context(), id, &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}
