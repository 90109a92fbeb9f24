package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/cache"
	"github.com/stemsi/enrollment-backend/internal/config"
	"github.com/stemsi/enrollment-backend/internal/model"
)

// EnrollmentService applies the enrollment rules and fans out their side
// effects (course cache, live seat channel, audit queue) after commit.
type EnrollmentService struct {
	enrollmentRepo EnrollmentStore
	studentRepo    StudentStore
	courseRepo     CourseStore
	eventRepo      EventStore
	cache          *cache.Cache
	log            zerolog.Logger
	now            func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService. c may be nil.
func NewEnrollmentService(
	enrollmentRepo EnrollmentStore,
	studentRepo StudentStore,
	courseRepo CourseStore,
	eventRepo EventStore,
	c *cache.Cache,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		eventRepo:      eventRepo,
		cache:          c,
		log:            log.With().Str("component", "enrollment_service").Logger(),
		now:            time.Now,
	}
}

// Enroll puts the student in the course. It fails with a NotFound error for
// an unknown student or course, ErrAlreadyEnrolled for a repeated pair and
// ErrCapacityExceeded when no seat is left.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID int) (*model.Enrollment, int, error) {
	enrollment, seats, err := s.enrollmentRepo.Enroll(ctx, studentID, courseID)
	if err != nil {
		return nil, 0, fmt.Errorf("enroll student %d in course %d: %w", studentID, courseID, err)
	}

	s.afterCommit(ctx, model.ActionEnroll, studentID, courseID, seats)
	return enrollment, seats, nil
}

// Unenroll takes the student out of the course and returns the seats left.
// A missing enrollment yields repository.ErrEnrollmentNotFound.
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseID int) (int, error) {
	seats, err := s.enrollmentRepo.Unenroll(ctx, studentID, courseID)
	if err != nil {
		return 0, fmt.Errorf("unenroll student %d from course %d: %w", studentID, courseID, err)
	}

	s.afterCommit(ctx, model.ActionUnenroll, studentID, courseID, seats)
	return seats, nil
}

// CoursesForStudent returns the student with the courses they are enrolled
// in, in enrollment order. An unknown student is NotFound; a student with no
// enrollments gets an empty list.
func (s *EnrollmentService) CoursesForStudent(ctx context.Context, studentID int) (*model.StudentCourses, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	courses, err := s.enrollmentRepo.ListCoursesForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list courses for student %d: %w", studentID, err)
	}
	if courses == nil {
		courses = []model.Course{}
	}

	return &model.StudentCourses{
		Name:    student.Name,
		Email:   student.Email,
		Courses: courses,
	}, nil
}

// Events returns the audit trail of a course.
func (s *EnrollmentService) Events(ctx context.Context, courseID int) ([]model.EnrollmentEvent, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByCourse(ctx, courseID)
}

// RecordEvent persists one event taken off the queue.
func (s *EnrollmentService) RecordEvent(ctx context.Context, ev *model.EnrollmentEvent) error {
	return s.eventRepo.Insert(ctx, ev)
}

func (s *EnrollmentService) afterCommit(ctx context.Context, action model.EnrollmentAction, studentID, courseID, seats int) {
	s.cache.Bump(ctx, config.CacheKey.CourseListGenerationKey(), config.CacheKey.CourseListKey())
	s.cache.Publish(ctx, config.CacheKey.CourseSeatsChannel(courseID), model.SeatUpdate{
		CourseID:       courseID,
		AvailableSeats: seats,
	})
	s.cache.Enqueue(ctx, config.WorkerKey.EnrollmentEventsQueue, model.EnrollmentEvent{
		StudentID:      studentID,
		CourseID:       courseID,
		Action:         action,
		AvailableSeats: seats,
		OccurredAt:     s.now().UTC(),
	})

	s.log.Info().
		Str("action", string(action)).
		Int("student_id", studentID).
		Int("course_id", courseID).
		Int("seats_left", seats).
		Msg("enrollment changed")
}
