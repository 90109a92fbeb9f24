package validator

import (
	"strings"

	"github.com/stemsi/enrollment-backend/internal/model"
)

// Student normalizes in (trimmed name, trimmed lower-case email) and checks
// it against the student rules. Every caller that creates or updates a
// student goes through here.
func Student(in *model.StudentInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return Struct(in)
}

// Course trims in and checks it against the course rules.
func Course(in *model.CourseInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Instructor = strings.TrimSpace(in.Instructor)
	return Struct(in)
}
