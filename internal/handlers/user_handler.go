package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type UserHandler struct {
	BaseHandler
	adminService services.AdminService
	authorizer   services.Authorizer
	validator    *validator.Validator
}

func NewUserHandler(
	adminService services.AdminService,
	authorizer services.Authorizer,
	validator *validator.Validator,
	logger utils.Logger,
) *UserHandler {
	return &UserHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		authorizer:   authorizer,
		validator:    validator,
	}
}

// Me resolves and returns the acting user
// @Summary Get current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	c.JSON(http.StatusOK, decision.User)
}

// RequestRole files a role elevation request for the acting user
// @Summary Request role elevation
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.CreateRoleRequestRequest true "Requested role"
// @Success 201 {object} models.RoleRequest
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/role-requests [post]
func (h *UserHandler) RequestRole(c *gin.Context) {
	var req services.CreateRoleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c, req.UserID))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	request, err := h.adminService.RequestRole(c.Request.Context(), &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}
