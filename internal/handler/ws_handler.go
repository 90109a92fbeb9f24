package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/config"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/service"
	ws "github.com/stemsi/enrollment-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live seat counts of a course.
type WSHandler struct {
	rdb           *redis.Client
	courseService *service.CourseService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, courseService *service.CourseService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:           rdb,
		courseService: courseService,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// CourseSeatsStream godoc
// WS /ws/courses/:id/seats
// Sends the current seat count, then the committed count after every change
// published for the course, until the client goes away. Each message carries
// a count at least as recent as the one before it.
func (h *WSHandler) CourseSeatsStream(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Subscribe before the snapshot so no update can fall in between.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, config.CacheKey.CourseSeatsChannel(courseID))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		failWithError(c, err)
		return
	}

	course, err := h.courseService.GetByID(ctx, courseID)
	if err != nil {
		failWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("course_id", courseID).Logger()
	wsLog.Debug().Msg("Seat watcher connected")

	if err := ws.WriteTyped(conn, ws.SeatsMessage{
		Event:          ws.EventSeats,
		CourseID:       courseID,
		AvailableSeats: course.AvailableSeats,
	}); err != nil {
		return
	}

	lastSent := course.AvailableSeats

	go ws.DiscardReads(conn, cancel)

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Seat watcher disconnected")
			return
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				_ = ws.WriteError(conn, "seat feed closed")
				return
			}
			var update model.SeatUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed seat update")
				continue
			}
			if update.CourseID != courseID {
				continue
			}

			// Publishes from separate commits can arrive out of order, so the
			// payload only signals a change; the count comes from the store.
			current, err := h.courseService.GetByID(ctx, courseID)
			if err != nil {
				wsLog.Warn().Err(err).Msg("Seat refresh failed")
				continue
			}
			if current.AvailableSeats == lastSent {
				continue
			}
			if err := ws.WriteTyped(conn, ws.SeatsMessage{
				Event:          ws.EventSeats,
				CourseID:       courseID,
				AvailableSeats: current.AvailableSeats,
			}); err != nil {
				return
			}
			lastSent = current.AvailableSeats
		}
	}
}
