package model

import "time"

// Valid range for a student's year of study.
const (
	MinStudentYear = 1
	MaxStudentYear = 4
)

// Student represents a registered student.
type Student struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentInput is the payload for registering or updating a student.
// It is accepted as JSON or as a url-encoded form.
type StudentInput struct {
	Name  string `json:"name" form:"name" validate:"required,min=2,max=50,personname"`
	Email string `json:"email" form:"email" validate:"required,max=254,email"`
	// min/max mirror MinStudentYear and MaxStudentYear.
	Year  int    `json:"year" form:"year" validate:"min=1,max=4"`
}

// StudentCourses is the response body of a student's course listing.
type StudentCourses struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Courses []Course `json:"courses"`
}
