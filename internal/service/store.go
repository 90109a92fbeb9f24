package service

import (
	"context"

	"github.com/stemsi/enrollment-backend/internal/model"
)

// StudentStore is the student persistence the services need.
// *repository.StudentRepository satisfies it.
type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
}

// CourseStore is satisfied by *repository.CourseRepository.
type CourseStore interface {
	GetByID(ctx context.Context, id int) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Create(ctx context.Context, c *model.Course) error
}

// EnrollmentStore applies enroll/unenroll atomically and reports the seats
// left afterwards. Satisfied by *repository.EnrollmentRepository.
type EnrollmentStore interface {
	Enroll(ctx context.Context, studentID, courseID int) (*model.Enrollment, int, error)
	Unenroll(ctx context.Context, studentID, courseID int) (int, error)
	ListCoursesForStudent(ctx context.Context, studentID int) ([]model.Course, error)
}

// EventStore is satisfied by *repository.EventRepository.
type EventStore interface {
	Insert(ctx context.Context, ev *model.EnrollmentEvent) error
	ListByCourse(ctx context.Context, courseID int) ([]model.EnrollmentEvent, error)
}
