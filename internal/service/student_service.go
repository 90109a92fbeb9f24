package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/validator"
)

// StudentService handles student registration and updates.
type StudentService struct {
	studentRepo StudentStore
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo StudentStore, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// Register validates in and creates the student. A taken email yields
// repository.ErrEmailTaken.
func (s *StudentService) Register(ctx context.Context, in model.StudentInput) (*model.Student, error) {
	if err := validator.Student(&in); err != nil {
		return nil, err
	}

	student := &model.Student{Name: in.Name, Email: in.Email, Year: in.Year}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("register student: %w", err)
	}

	s.log.Info().Int("student_id", student.ID).Msg("student registered")
	return student, nil
}

// Update validates in and overwrites the student's name, email and year.
func (s *StudentService) Update(ctx context.Context, id int, in model.StudentInput) (*model.Student, error) {
	if err := validator.Student(&in); err != nil {
		return nil, err
	}

	student := &model.Student{ID: id, Name: in.Name, Email: in.Email, Year: in.Year}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("update student %d: %w", id, err)
	}
	return student, nil
}
