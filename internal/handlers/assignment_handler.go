package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	authorizer        services.Authorizer
	validator         *validator.Validator
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	authorizer services.Authorizer,
	validator *validator.Validator,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		authorizer:        authorizer,
		validator:         validator,
	}
}

// CreateAssignment creates an assignment inside a course
// @Summary Create assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param assignment body services.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} models.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.CreatorID), models.ActionAssignmentCreate)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), courseID, &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment retrieves an assignment by ID
// @Summary Get assignment
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} models.Assignment
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListAssignments lists a course's assignments
// @Summary List course assignments
// @Tags assignments
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} models.Assignment
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	assignments, err := h.assignmentService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// UpdateAssignment updates an assignment
// @Summary Update assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param assignment body services.UpdateAssignmentRequest true "Assignment data"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.UpdaterID), models.ActionAssignmentUpdate)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), id, &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment deletes an assignment
// @Summary Delete assignment
// @Tags assignments
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionAssignmentDelete)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, decision.User); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
