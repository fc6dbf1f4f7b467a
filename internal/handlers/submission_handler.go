package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	authorizer        services.Authorizer
	validator         *validator.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	authorizer services.Authorizer,
	validator *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		authorizer:        authorizer,
		validator:         validator,
	}
}

// Submit creates or returns the existing submission for an assignment
// @Summary Submit assignment
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Assignment ID"
// @Param submission body services.CreateSubmissionRequest true "Submission payload"
// @Success 201 {object} services.SubmissionResponse
// @Success 200 {object} services.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}

	var req services.CreateSubmissionRequest
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

	submission, err := h.submissionService.Submit(c.Request.Context(), assignmentID, &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if submission.AlreadyExists {
		status = http.StatusOK
	}
	c.JSON(status, submission)
}

// GetSubmission retrieves a submission by ID
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListSubmissions lists an assignment's submissions
// @Summary List assignment submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Assignment ID"
// @Success 200 {array} models.Submission
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assignments/{id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	submissions, err := h.submissionService.ListByAssignment(c.Request.Context(), assignmentID, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// ListMySubmissions lists the actor's own submissions
// @Summary List my submissions
// @Tags submissions
// @Produce json
// @Success 200 {array} models.Submission
// @Failure 401 {object} ErrorResponse
// @Router /submissions/mine [get]
func (h *SubmissionHandler) ListMySubmissions(c *gin.Context) {
	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	submissions, err := h.submissionService.ListMine(c.Request.Context(), decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// GradeSubmission records a grade on a submission
// @Summary Grade submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param grade body services.GradeRequest true "Grade payload"
// @Success 200 {object} services.GradeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.GraderID), models.ActionSubmissionGrade)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	h.LogRequest(c, "Grading submission", "submission_id", id, "grader_id", decision.User.ID)

	graded, err := h.submissionService.Grade(c.Request.Context(), id, &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, graded)
}
