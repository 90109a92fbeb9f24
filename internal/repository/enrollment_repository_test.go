package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/repository"
	"github.com/stemsi/enrollment-backend/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pool        *pgxpool.Pool
	students    *repository.StudentRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	events      *repository.EventRepository
}

func newFixture(t *testing.T) *fixture {
	pg := testdb.SetupSharedPostgres(t)
	return &fixture{
		pool:        pg.Pool,
		students:    repository.NewStudentRepository(pg.Pool),
		courses:     repository.NewCourseRepository(pg.Pool),
		enrollments: repository.NewEnrollmentRepository(pg.Pool),
		events:      repository.NewEventRepository(pg.Pool),
	}
}

func (f *fixture) student(t *testing.T, email string) *model.Student {
	t.Helper()
	s := &model.Student{Name: "Test Student", Email: email, Year: 2}
	require.NoError(t, f.students.Create(context.Background(), s))
	return s
}

func (f *fixture) course(t *testing.T, seats int) *model.Course {
	t.Helper()
	c := &model.Course{Name: "Distributed Systems", Instructor: "Dr. Lamport", AvailableSeats: seats}
	require.NoError(t, f.courses.Create(context.Background(), c))
	return c
}

func (f *fixture) enrollmentCount(t *testing.T, courseID int) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&n))
	return n
}

func TestEnrollmentRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("EnrollTakesOneSeat", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c := f.course(t, 3)

		e, seats, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
		require.NoError(t, err)
		assert.NotZero(t, e.ID)
		assert.Equal(t, 2, seats)

		got, err := f.courses.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.AvailableSeats)
		assert.Equal(t, 3, got.AvailableSeats+f.enrollmentCount(t, c.ID))
	})

	t.Run("EnrollUnknownStudentOrCourse", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c := f.course(t, 3)

		_, _, err := f.enrollments.Enroll(ctx, 999, c.ID)
		assert.ErrorIs(t, err, repository.ErrStudentNotFound)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, _, err = f.enrollments.Enroll(ctx, s.ID, 999)
		assert.ErrorIs(t, err, repository.ErrCourseNotFound)
	})

	t.Run("EnrollTwiceConflicts", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c := f.course(t, 3)

		_, _, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
		require.NoError(t, err)

		_, _, err = f.enrollments.Enroll(ctx, s.ID, c.ID)
		assert.ErrorIs(t, err, repository.ErrAlreadyEnrolled)
		assert.ErrorIs(t, err, repository.ErrConflict)

		got, err := f.courses.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.AvailableSeats)
	})

	t.Run("FullCourseRejectsWithoutRow", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c := f.course(t, 0)

		_, _, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
		assert.Equal(t, 0, f.enrollmentCount(t, c.ID))

		got, err := f.courses.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.AvailableSeats)
	})

	t.Run("EnrollUnenrollRoundTrip", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c := f.course(t, 5)

		_, _, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
		require.NoError(t, err)

		seats, err := f.enrollments.Unenroll(ctx, s.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, seats)
		assert.Equal(t, 0, f.enrollmentCount(t, c.ID))
	})

	t.Run("UnenrollMissingIsNotFound", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c := f.course(t, 5)

		_, err := f.enrollments.Unenroll(ctx, s.ID, c.ID)
		assert.ErrorIs(t, err, repository.ErrEnrollmentNotFound)

		_, err = f.enrollments.Unenroll(ctx, s.ID, 999)
		assert.ErrorIs(t, err, repository.ErrEnrollmentNotFound)

		got, err := f.courses.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.AvailableSeats)
	})

	t.Run("ConcurrentEnrollForLastSeat", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		c := f.course(t, 1)
		first := f.student(t, "first@example.com")
		second := f.student(t, "second@example.com")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, s := range []*model.Student{first, second} {
			wg.Add(1)
			go func(i, studentID int) {
				defer wg.Done()
				_, _, errs[i] = f.enrollments.Enroll(ctx, studentID, c.ID)
			}(i, s.ID)
		}
		wg.Wait()

		var succeeded, full int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, repository.ErrCapacityExceeded):
				full++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, full)

		got, err := f.courses.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.AvailableSeats)
		assert.Equal(t, 1, f.enrollmentCount(t, c.ID))
	})

	t.Run("ManyConcurrentEnrollsKeepInvariant", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		const seats, contenders = 5, 12
		c := f.course(t, seats)

		ids := make([]int, contenders)
		for i := range ids {
			ids[i] = f.student(t, "s"+string(rune('a'+i))+"@example.com").ID
		}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(studentID int) {
				defer wg.Done()
				_, _, _ = f.enrollments.Enroll(ctx, studentID, c.ID)
			}(id)
		}
		wg.Wait()

		got, err := f.courses.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.AvailableSeats)
		assert.Equal(t, seats, f.enrollmentCount(t, c.ID))
	})

	t.Run("ListCoursesInEnrollmentOrder", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")
		c1 := f.course(t, 3)
		c2 := f.course(t, 3)
		c3 := f.course(t, 3)

		for _, c := range []*model.Course{c3, c1, c2} {
			_, _, err := f.enrollments.Enroll(ctx, s.ID, c.ID)
			require.NoError(t, err)
		}

		courses, err := f.enrollments.ListCoursesForStudent(ctx, s.ID)
		require.NoError(t, err)
		require.Len(t, courses, 3)
		assert.Equal(t, []int{c3.ID, c1.ID, c2.ID}, []int{courses[0].ID, courses[1].ID, courses[2].ID})
	})

	t.Run("ListCoursesEmpty", func(t *testing.T) {
		testdb.ResetAll(t, f.pool)
		s := f.student(t, "a@example.com")

		courses, err := f.enrollments.ListCoursesForStudent(ctx, s.ID)
		require.NoError(t, err)
		assert.NotNil(t, courses)
		assert.Empty(t, courses)
	})
}
