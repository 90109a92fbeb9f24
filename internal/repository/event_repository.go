package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/enrollment-backend/internal/model"
)

// EventRepository stores the enrollment audit trail.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Insert appends one event.
func (r *EventRepository) Insert(ctx context.Context, ev *model.EnrollmentEvent) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollment_events (student_id, course_id, action, available_seats, occurred_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		ev.StudentID, ev.CourseID, ev.Action, ev.AvailableSeats, ev.OccurredAt,
	).Scan(&ev.ID)
	if err != nil && pgErrorCode(err) == pgForeignKeyViolation {
		return ErrCourseNotFound
	}
	return err
}

// ListByCourse returns a course's events in the order they happened.
func (r *EventRepository) ListByCourse(ctx context.Context, courseID int) ([]model.EnrollmentEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, course_id, action, available_seats, occurred_at
		 FROM enrollment_events
		 WHERE course_id = $1
		 ORDER BY occurred_at, id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.EnrollmentEvent{}
	for rows.Next() {
		var ev model.EnrollmentEvent
		if err := rows.Scan(&ev.ID, &ev.StudentID, &ev.CourseID, &ev.Action, &ev.AvailableSeats, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
