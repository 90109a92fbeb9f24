// Package servicetest provides in-memory stores satisfying the service
// interfaces, for unit tests that should not need PostgreSQL.
package servicetest

import (
	"context"
	"sync"
	"time"

	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/repository"
)

// Store keeps students, courses, enrollments and events in memory and
// mirrors the repository error contract. One mutex guards everything, which
// gives the same all-or-nothing effect as the database transaction.
type Store struct {
	mu          sync.Mutex
	students    map[int]model.Student
	courses     map[int]model.Course
	enrollments []model.Enrollment
	events      []model.EnrollmentEvent
	nextID      int

	// Err, when set, is returned by every call.
	Err error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		students: make(map[int]model.Student),
		courses:  make(map[int]model.Course),
	}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

// Students exposes the student half of the store.
func (s *Store) Students() *StudentStore { return &StudentStore{s} }

// Courses exposes the course half of the store.
func (s *Store) Courses() *CourseStore { return &CourseStore{s} }

// Enrollments exposes the enrollment half of the store.
func (s *Store) Enrollments() *EnrollmentStore { return &EnrollmentStore{s} }

// Events exposes the event half of the store.
func (s *Store) Events() *EventStore { return &EventStore{s} }

// EnrollmentCount returns how many enrollments reference courseID.
func (s *Store) EnrollmentCount(courseID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n
}

// StudentStore implements service.StudentStore over a Store.
type StudentStore struct{ s *Store }

// GetByID returns repository.ErrStudentNotFound for an unknown id.
func (st *StudentStore) GetByID(_ context.Context, id int) (*model.Student, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.Err != nil {
		return nil, st.s.Err
	}
	v, ok := st.s.students[id]
	if !ok {
		return nil, repository.ErrStudentNotFound
	}
	return &v, nil
}

// Create assigns an id and rejects a taken email with repository.ErrEmailTaken.
func (st *StudentStore) Create(_ context.Context, in *model.Student) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.Err != nil {
		return st.s.Err
	}
	for _, v := range st.s.students {
		if v.Email == in.Email {
			return repository.ErrEmailTaken
		}
	}
	in.ID = st.s.id()
	in.CreatedAt = time.Now()
	in.UpdatedAt = in.CreatedAt
	st.s.students[in.ID] = *in
	return nil
}

// Update replaces the student, keeping CreatedAt.
func (st *StudentStore) Update(_ context.Context, in *model.Student) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	if st.s.Err != nil {
		return st.s.Err
	}
	cur, ok := st.s.students[in.ID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	for id, v := range st.s.students {
		if id != in.ID && v.Email == in.Email {
			return repository.ErrEmailTaken
		}
	}
	in.CreatedAt = cur.CreatedAt
	in.UpdatedAt = time.Now()
	st.s.students[in.ID] = *in
	return nil
}

// CourseStore implements service.CourseStore over a Store.
type CourseStore struct{ s *Store }

// GetByID returns repository.ErrCourseNotFound for an unknown id.
func (cs *CourseStore) GetByID(_ context.Context, id int) (*model.Course, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if cs.s.Err != nil {
		return nil, cs.s.Err
	}
	v, ok := cs.s.courses[id]
	if !ok {
		return nil, repository.ErrCourseNotFound
	}
	return &v, nil
}

// List returns courses in id order.
func (cs *CourseStore) List(_ context.Context) ([]model.Course, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if cs.s.Err != nil {
		return nil, cs.s.Err
	}
	var out []model.Course
	for id := 1; id <= cs.s.nextID; id++ {
		if c, ok := cs.s.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Create assigns an id and stores the course.
func (cs *CourseStore) Create(_ context.Context, in *model.Course) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	if cs.s.Err != nil {
		return cs.s.Err
	}
	in.ID = cs.s.id()
	in.CreatedAt = time.Now()
	cs.s.courses[in.ID] = *in
	return nil
}

// EnrollmentStore implements service.EnrollmentStore over a Store.
type EnrollmentStore struct{ s *Store }

// Enroll checks student, course, duplicate and seats in the same order as
// the database transaction, then takes one seat.
func (es *EnrollmentStore) Enroll(_ context.Context, studentID, courseID int) (*model.Enrollment, int, error) {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if es.s.Err != nil {
		return nil, 0, es.s.Err
	}
	if _, ok := es.s.students[studentID]; !ok {
		return nil, 0, repository.ErrStudentNotFound
	}
	course, ok := es.s.courses[courseID]
	if !ok {
		return nil, 0, repository.ErrCourseNotFound
	}
	for _, e := range es.s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return nil, 0, repository.ErrAlreadyEnrolled
		}
	}
	if course.AvailableSeats <= 0 {
		return nil, 0, repository.ErrCapacityExceeded
	}

	e := model.Enrollment{ID: es.s.id(), StudentID: studentID, CourseID: courseID, CreatedAt: time.Now()}
	es.s.enrollments = append(es.s.enrollments, e)
	course.AvailableSeats--
	es.s.courses[courseID] = course
	return &e, course.AvailableSeats, nil
}

// Unenroll removes the pair and gives the seat back.
func (es *EnrollmentStore) Unenroll(_ context.Context, studentID, courseID int) (int, error) {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if es.s.Err != nil {
		return 0, es.s.Err
	}
	for i, e := range es.s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			es.s.enrollments = append(es.s.enrollments[:i], es.s.enrollments[i+1:]...)
			course := es.s.courses[courseID]
			course.AvailableSeats++
			es.s.courses[courseID] = course
			return course.AvailableSeats, nil
		}
	}
	return 0, repository.ErrEnrollmentNotFound
}

// ListCoursesForStudent returns courses in enrollment order.
func (es *EnrollmentStore) ListCoursesForStudent(_ context.Context, studentID int) ([]model.Course, error) {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	if es.s.Err != nil {
		return nil, es.s.Err
	}
	out := []model.Course{}
	for _, e := range es.s.enrollments {
		if e.StudentID == studentID {
			out = append(out, es.s.courses[e.CourseID])
		}
	}
	return out, nil
}

// EventStore implements service.EventStore over a Store.
type EventStore struct{ s *Store }

// Insert rejects events for unknown courses like the foreign key does.
func (ev *EventStore) Insert(_ context.Context, in *model.EnrollmentEvent) error {
	ev.s.mu.Lock()
	defer ev.s.mu.Unlock()
	if ev.s.Err != nil {
		return ev.s.Err
	}
	if _, ok := ev.s.courses[in.CourseID]; !ok {
		return repository.ErrCourseNotFound
	}
	in.ID = int64(len(ev.s.events) + 1)
	ev.s.events = append(ev.s.events, *in)
	return nil
}

// ListByCourse returns a course's events in insertion order.
func (ev *EventStore) ListByCourse(_ context.Context, courseID int) ([]model.EnrollmentEvent, error) {
	ev.s.mu.Lock()
	defer ev.s.mu.Unlock()
	if ev.s.Err != nil {
		return nil, ev.s.Err
	}
	out := []model.EnrollmentEvent{}
	for _, e := range ev.s.events {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}
