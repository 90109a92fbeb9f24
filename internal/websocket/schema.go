package websocket

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSeats Event = "seats"
	EventError Event = "error"
)

// SeatsMessage carries the current seat count of a course.
type SeatsMessage struct {
	Event          Event `json:"event"`
	CourseID       int   `json:"course_id"`
	AvailableSeats int   `json:"available_seats"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
