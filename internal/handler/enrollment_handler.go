package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/response"
	"github.com/stemsi/enrollment-backend/internal/service"
	"github.com/stemsi/enrollment-backend/internal/validator"
)

// EnrollmentHandler handles enroll and unenroll.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// Enroll godoc
// POST /enroll
// Takes one seat of the course for the student.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req model.EnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	enrollment, seats, err := h.enrollmentService.Enroll(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"enrollment":      enrollment,
		"available_seats": seats,
	})
}

// Unenroll godoc
// POST /unenroll
// Releases the student's seat in the course.
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	var req model.EnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	seats, err := h.enrollmentService.Unenroll(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":         "unenrolled",
		"available_seats": seats,
	})
}
