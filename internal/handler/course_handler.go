package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/response"
	"github.com/stemsi/enrollment-backend/internal/service"
	"github.com/stemsi/enrollment-backend/internal/validator"
)

// CourseHandler handles the course catalogue.
type CourseHandler struct {
	courseService     *service.CourseService
	enrollmentService *service.EnrollmentService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(
	courseService *service.CourseService,
	enrollmentService *service.EnrollmentService,
) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		enrollmentService: enrollmentService,
	}
}

// AddCourse godoc
// POST /add_course
func (h *CourseHandler) AddCourse(c *gin.Context) {
	var req model.CourseInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	course, err := h.courseService.Add(c.Request.Context(), req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// ListCourses godoc
// GET /courses
// Lists every course with its remaining seats.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.List(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse godoc
// GET /courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CourseEvents godoc
// GET /courses/:id/events
// Returns the enroll/unenroll history recorded for a course.
func (h *CourseHandler) CourseEvents(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	events, err := h.enrollmentService.Events(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}
	if events == nil {
		events = []model.EnrollmentEvent{}
	}

	response.Success(c, http.StatusOK, gin.H{"events": events})
}
