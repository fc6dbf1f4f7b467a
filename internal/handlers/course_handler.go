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

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	authorizer    services.Authorizer
	validator     *validator.Validator
}

func NewCourseHandler(
	courseService services.CourseService,
	authorizer services.Authorizer,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		authorizer:    authorizer,
		validator:     validator,
	}
}

// CreateCourse creates a new course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.CreatorID), models.ActionCourseCreate)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title, "actor_id", decision.User.ID)

	course, err := h.courseService.Create(c.Request.Context(), &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// Reads are open; the actor only influences the can_edit flags.
	var actor *models.User
	if decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c)); decision.Ok {
		actor = decision.User
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses lists courses with optional search and pagination
// @Summary List courses
// @Tags courses
// @Produce json
// @Param q query string false "Search query"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	var actor *models.User
	if decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c)); decision.Ok {
		actor = decision.User
	}

	courses, err := h.courseService.List(c.Request.Context(), c.Query("q"), page, size, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param course body services.UpdateCourseRequest true "Course data"
// @Success 200 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.UpdaterID), models.ActionCourseUpdate)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), id, &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c), models.ActionCourseDelete)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, decision.User); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Enroll enrolls a user into a course
// @Summary Enroll in course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param enrollment body services.EnrollRequest false "Enrollment target"
// @Success 200 {object} services.EnrollmentResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enroll [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// Body is optional: no body means the actor enrolls themselves.
	var req services.EnrollRequest
	_ = c.ShouldBindJSON(&req)

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	enrollment, err := h.courseService.Enroll(c.Request.Context(), id, req.UserID, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if enrollment.AlreadyEnrolled {
		status = http.StatusOK
	}
	c.JSON(status, enrollment)
}

// Unenroll removes a user from a course
// @Summary Unenroll from course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enroll [delete]
func (h *CourseHandler) Unenroll(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	if err := h.courseService.Unenroll(c.Request.Context(), id, c.Query("user_id"), decision.User); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ListEnrollments lists enrollments for a course
// @Summary List course enrollments
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {array} models.Enrollment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/enrollments [get]
func (h *CourseHandler) ListEnrollments(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	enrollments, err := h.courseService.ListEnrollments(c.Request.Context(), id, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// ListMyCourses lists the actor's enrollments
// @Summary List my enrollments
// @Tags courses
// @Produce json
// @Success 200 {array} models.Enrollment
// @Failure 401 {object} ErrorResponse
// @Router /courses/mine [get]
func (h *CourseHandler) ListMyCourses(c *gin.Context) {
	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	enrollments, err := h.courseService.ListForStudent(c.Request.Context(), decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// ListOwnedCourses lists the courses the actor created
// @Summary List owned courses
// @Tags courses
// @Produce json
// @Success 200 {array} services.CourseResponse
// @Failure 401 {object} ErrorResponse
// @Router /courses/owned [get]
func (h *CourseHandler) ListOwnedCourses(c *gin.Context) {
	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	courses, err := h.courseService.ListOwned(c.Request.Context(), decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}
