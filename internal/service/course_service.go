package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/cache"
	"github.com/stemsi/enrollment-backend/internal/config"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/validator"
)

// CourseService handles course creation and the cached course listing.
type CourseService struct {
	courseRepo CourseStore
	cache      *cache.Cache
	log        zerolog.Logger
}

// NewCourseService creates a new CourseService. c may be nil.
func NewCourseService(courseRepo CourseStore, c *cache.Cache, log zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		cache:      c,
		log:        log.With().Str("component", "course_service").Logger(),
	}
}

// GetByID retrieves a course by its ID.
func (s *CourseService) GetByID(ctx context.Context, id int) (*model.Course, error) {
	return s.courseRepo.GetByID(ctx, id)
}

// List returns every course, served from Redis when possible.
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	key := config.CacheKey.CourseListKey()
	genKey := config.CacheKey.CourseListGenerationKey()

	var courses []model.Course
	if s.cache.GetJSON(ctx, key, &courses) {
		return courses, nil
	}

	// Read the generation before the store so a write committed during the
	// query voids the fill below.
	gen, fill := s.cache.Generation(ctx, genKey)

	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}

	if fill {
		s.cache.SetJSONAtGeneration(ctx, key, genKey, gen, courses)
	}
	return courses, nil
}

// Add validates in and creates the course.
func (s *CourseService) Add(ctx context.Context, in model.CourseInput) (*model.Course, error) {
	if err := validator.Course(&in); err != nil {
		return nil, err
	}

	course := &model.Course{
		Name:           in.Name,
		Instructor:     in.Instructor,
		AvailableSeats: *in.AvailableSeats,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("add course: %w", err)
	}

	s.cache.Bump(ctx, config.CacheKey.CourseListGenerationKey(), config.CacheKey.CourseListKey())
	s.log.Info().Int("course_id", course.ID).Int("seats", course.AvailableSeats).Msg("course added")
	return course, nil
}
