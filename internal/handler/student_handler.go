package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/response"
	"github.com/stemsi/enrollment-backend/internal/service"
	"github.com/stemsi/enrollment-backend/internal/validator"
)

// StudentHandler handles student registration, profile and course listing.
type StudentHandler struct {
	studentService    *service.StudentService
	enrollmentService *service.EnrollmentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(
	studentService *service.StudentService,
	enrollmentService *service.EnrollmentService,
) *StudentHandler {
	return &StudentHandler{
		studentService:    studentService,
		enrollmentService: enrollmentService,
	}
}

// RegisterStudent godoc
// POST /register_student
// Registers a student and returns the new id.
func (h *StudentHandler) RegisterStudent(c *gin.Context) {
	var req model.StudentInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	student, err := h.studentService.Register(c.Request.Context(), req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_id": student.ID,
		"student":    student,
	})
}

// UpdateStudent godoc
// POST /update_student/:id
// Replaces a student's name, email and year.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.StudentInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// GetStudent godoc
// GET /students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// StudentCourses godoc
// GET /student_courses/:id
// Returns the student's name and email with their courses in enrollment
// order. A student with no enrollments gets an empty list.
func (h *StudentHandler) StudentCourses(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.enrollmentService.CoursesForStudent(c.Request.Context(), id)
	if err != nil {
		failWithError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
