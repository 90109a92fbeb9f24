package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/enrollment-backend/internal/model"
)

// EnrollmentRepository owns the seat bookkeeping. The seat count of a course
// only ever changes inside the transactions below, together with the
// enrollment row it accounts for. The schema has no seat trigger.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Enroll registers a student in a course and takes one seat. It returns the
// new enrollment and the seats left afterwards.
//
// The course row is locked first, so concurrent enrolls on one course are
// serialized and at most one of them can take the last seat.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, courseID int) (*model.Enrollment, int, error) {
	e := &model.Enrollment{StudentID: studentID, CourseID: courseID}
	var seats int

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var studentExists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, studentID,
		).Scan(&studentExists); err != nil {
			return err
		}
		if !studentExists {
			return ErrStudentNotFound
		}

		var err error
		seats, err = lockCourseSeats(ctx, tx, courseID)
		if err != nil {
			return err
		}

		var enrolled bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
			studentID, courseID,
		).Scan(&enrolled); err != nil {
			return err
		}
		if enrolled {
			return ErrAlreadyEnrolled
		}

		if seats <= 0 {
			return ErrCapacityExceeded
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO enrollments (student_id, course_id)
			 VALUES ($1, $2)
			 RETURNING id, created_at`,
			studentID, courseID,
		).Scan(&e.ID, &e.CreatedAt); err != nil {
			if pgErrorCode(err) == pgUniqueViolation {
				return ErrAlreadyEnrolled
			}
			return err
		}

		return tx.QueryRow(ctx,
			`UPDATE courses SET available_seats = available_seats - 1
			 WHERE id = $1
			 RETURNING available_seats`, courseID,
		).Scan(&seats)
	})
	if err != nil {
		return nil, 0, err
	}
	return e, seats, nil
}

// Unenroll removes a student from a course and gives the seat back. It
// returns the seats available afterwards, or ErrEnrollmentNotFound when the
// student was not enrolled.
func (r *EnrollmentRepository) Unenroll(ctx context.Context, studentID, courseID int) (int, error) {
	var seats int

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := lockCourseSeats(ctx, tx, courseID); err != nil {
			if errors.Is(err, ErrCourseNotFound) {
				return ErrEnrollmentNotFound
			}
			return err
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`,
			studentID, courseID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEnrollmentNotFound
		}

		return tx.QueryRow(ctx,
			`UPDATE courses SET available_seats = available_seats + 1
			 WHERE id = $1
			 RETURNING available_seats`, courseID,
		).Scan(&seats)
	})
	if err != nil {
		return 0, err
	}
	return seats, nil
}

// ListCoursesForStudent returns the courses a student is enrolled in, oldest
// enrollment first. A student without enrollments yields an empty slice.
func (r *EnrollmentRepository) ListCoursesForStudent(ctx context.Context, studentID int) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.instructor, c.available_seats, c.created_at
		 FROM enrollments e
		 JOIN courses c ON c.id = e.course_id
		 WHERE e.student_id = $1
		 ORDER BY e.id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Instructor, &c.AvailableSeats, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// lockCourseSeats takes a row lock on the course for the rest of tx and
// returns its current seat count.
func lockCourseSeats(ctx context.Context, tx pgx.Tx, courseID int) (int, error) {
	var seats int
	err := tx.QueryRow(ctx,
		`SELECT available_seats FROM courses WHERE id = $1 FOR UPDATE`, courseID,
	).Scan(&seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrCourseNotFound
		}
		return 0, err
	}
	return seats, nil
}
