package model

import "time"

// Enrollment links one student to one course and consumes one seat.
type Enrollment struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	CourseID  int       `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrollmentRequest is the payload for both enroll and unenroll.
type EnrollmentRequest struct {
	StudentID int `json:"student_id" form:"student_id" binding:"required,min=1"`
	CourseID  int `json:"course_id" form:"course_id" binding:"required,min=1"`
}

// EnrollmentAction names what happened to an enrollment.
type EnrollmentAction string

const (
	ActionEnroll   EnrollmentAction = "enroll"
	ActionUnenroll EnrollmentAction = "unenroll"
)

// EnrollmentEvent is one audit record of an enroll or unenroll.
type EnrollmentEvent struct {
	ID             int64            `json:"id"`
	StudentID      int              `json:"student_id"`
	CourseID       int              `json:"course_id"`
	Action         EnrollmentAction `json:"action"`
	AvailableSeats int              `json:"available_seats"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// SeatUpdate is published whenever a course's seat count changes.
type SeatUpdate struct {
	CourseID       int `json:"course_id"`
	AvailableSeats int `json:"available_seats"`
}
