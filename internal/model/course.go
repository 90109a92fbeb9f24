package model

import "time"

// Course represents an offered course with its remaining capacity.
type Course struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Instructor     string    `json:"instructor"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
}

// CourseInput is the payload for adding a course. AvailableSeats is a pointer
// so that an omitted field is told apart from an explicit zero.
type CourseInput struct {
	Name           string `json:"name" form:"name" validate:"required,min=1,max=100"`
	Instructor     string `json:"instructor" form:"instructor" validate:"required,min=1,max=100"`
	AvailableSeats *int   `json:"available_seats" form:"available_seats" validate:"required,min=0"`
}
