package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrStudentNotFound ErrCode = "STUDENT_NOT_FOUND"
	ErrCourseNotFound  ErrCode = "COURSE_NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrEmailTaken      ErrCode = "EMAIL_TAKEN"

	// ─── Enrollment ────────────────────────────────────────────────────
	ErrAlreadyEnrolled  ErrCode = "ALREADY_ENROLLED"
	ErrNotEnrolled      ErrCode = "NOT_ENROLLED"
	ErrCapacityExceeded ErrCode = "CAPACITY_EXCEEDED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrStudentNotFound:
		return "Student not found."
	case ErrCourseNotFound:
		return "Course not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrEmailTaken:
		return "A student with this email is already registered."

	case ErrAlreadyEnrolled:
		return "Student is already enrolled in this course."
	case ErrNotEnrolled:
		return "Student is not enrolled in this course."
	case ErrCapacityExceeded:
		return "Course has no available seats."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
