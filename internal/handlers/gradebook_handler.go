package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
)

type GradebookHandler struct {
	BaseHandler
	gradebookService services.GradebookService
	authorizer       services.Authorizer
}

func NewGradebookHandler(
	gradebookService services.GradebookService,
	authorizer services.Authorizer,
	logger utils.Logger,
) *GradebookHandler {
	return &GradebookHandler{
		BaseHandler:      NewBaseHandler(logger),
		gradebookService: gradebookService,
		authorizer:       authorizer,
	}
}

// ExportGradebook streams a course's gradebook as an xlsx workbook
// @Summary Export course gradebook
// @Tags gradebook
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/gradebook/export [get]
func (h *GradebookHandler) ExportGradebook(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionGradebookExport)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	h.LogRequest(c, "Exporting gradebook", "course_id", id, "actor_id", decision.User.ID)

	content, filename, err := h.gradebookService.ExportCourseGradebook(c.Request.Context(), id, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		content)
}
