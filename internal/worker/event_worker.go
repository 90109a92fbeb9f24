package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/enrollment-backend/internal/config"
	"github.com/stemsi/enrollment-backend/internal/model"
	"github.com/stemsi/enrollment-backend/internal/repository"
)

// EventRecorder persists one enrollment event.
type EventRecorder interface {
	RecordEvent(ctx context.Context, ev *model.EnrollmentEvent) error
}

// EventWorker consumes the enrollment event queue and writes each event to
// PostgreSQL.
type EventWorker struct {
	recorder   EventRecorder
	rdb        *redis.Client
	log        zerolog.Logger
	queue      string
	retryDelay time.Duration
}

// NewEventWorker creates a new EventWorker.
func NewEventWorker(recorder EventRecorder, rdb *redis.Client, log zerolog.Logger) *EventWorker {
	return &EventWorker{
		recorder:   recorder,
		rdb:        rdb,
		log:        log.With().Str("component", "event_worker").Logger(),
		queue:      config.WorkerKey.EnrollmentEventsQueue,
		retryDelay: 5 * time.Second,
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *EventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *EventWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			// Back off so a Redis outage does not spin the loop.
			sleepCtx(ctx, w.retryDelay)
		}
		return
	}

	if len(result) < 2 {
		return
	}

	if err := w.persist(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying later")
		// Push back to queue for retry.
		w.rdb.RPush(context.Background(), w.queue, result[1])
		sleepCtx(ctx, w.retryDelay)
	}
}

// persist stores one raw queue item. Items that can never be stored are
// logged and dropped; only transient failures are returned.
func (w *EventWorker) persist(ctx context.Context, raw string) error {
	var ev model.EnrollmentEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping event")
		return nil
	}

	err := w.recorder.RecordEvent(ctx, &ev)
	if errors.Is(err, repository.ErrNotFound) {
		w.log.Warn().Err(err).Int("course_id", ev.CourseID).Msg("Event references a missing row, dropping")
		return nil
	}
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *EventWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, w.queue).Result()
		if err != nil {
			break
		}

		if err := w.persist(ctx, result); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, w.queue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
