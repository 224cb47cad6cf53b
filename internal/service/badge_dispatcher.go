package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const defaultBadgeTimeout = 15 * time.Second

// BadgeEvaluator runs a badge evaluation for one user.
type BadgeEvaluator interface {
	EvaluateUser(ctx context.Context, userID uint)
}

// AsyncBadgeDispatcher evaluates badges on a detached goroutine per trigger.
type AsyncBadgeDispatcher struct {
	evaluator BadgeEvaluator
	timeout   time.Duration
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// NewAsyncBadgeDispatcher builds a goroutine dispatcher.
func NewAsyncBadgeDispatcher(evaluator BadgeEvaluator, timeout time.Duration, logger zerolog.Logger) *AsyncBadgeDispatcher {
	if timeout <= 0 {
		timeout = defaultBadgeTimeout
	}
	return &AsyncBadgeDispatcher{
		evaluator: evaluator,
		timeout:   timeout,
		logger:    logger.With().Str("component", "badge_dispatcher").Logger(),
	}
}

// Trigger returns immediately. The evaluation gets its own context so it
// outlives the request that caused it.
func (d *AsyncBadgeDispatcher) Trigger(userID uint) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Interface("panic", r).Uint("user_id", userID).Msg("badge evaluation panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.evaluator.EvaluateUser(ctx, userID)
	}()
}

// Wait blocks until in-flight evaluations finish.
func (d *AsyncBadgeDispatcher) Wait() {
	d.wg.Wait()
}

// SubmissionGradedEvent is published after a submission is stored.
type SubmissionGradedEvent struct {
	UserID uint      `json:"user_id"`
	SentAt time.Time `json:"sent_at"`
}

// SubmissionGradedSubject returns the subject graded events are published on.
func SubmissionGradedSubject(base string) string {
	if base == "" {
		base = "mea"
	}
	return base + ".submission.graded"
}

// NATSBadgeDispatcher hands badge evaluation to a BadgeWorker through NATS.
type NATSBadgeDispatcher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSBadgeDispatcher publishes graded events on the given subject base.
func NewNATSBadgeDispatcher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) *NATSBadgeDispatcher {
	return &NATSBadgeDispatcher{
		conn:    conn,
		subject: SubmissionGradedSubject(subjectBase),
		logger:  logger.With().Str("component", "badge_dispatcher").Logger(),
	}
}

func (d *NATSBadgeDispatcher) Trigger(userID uint) {
	payload, err := json.Marshal(SubmissionGradedEvent{UserID: userID, SentAt: time.Now().UTC()})
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to encode graded event")
		return
	}
	if err := d.conn.Publish(d.subject, payload); err != nil {
		d.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to publish graded event")
	}
}

// BadgeWorker consumes graded events and runs badge evaluation.
type BadgeWorker struct {
	conn      *nats.Conn
	subject   string
	queue     string
	evaluator BadgeEvaluator
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewBadgeWorker builds a queue-group consumer so each event is handled once
// across replicas.
func NewBadgeWorker(conn *nats.Conn, subjectBase string, evaluator BadgeEvaluator, timeout time.Duration, logger zerolog.Logger) *BadgeWorker {
	if timeout <= 0 {
		timeout = defaultBadgeTimeout
	}
	return &BadgeWorker{
		conn:      conn,
		subject:   SubmissionGradedSubject(subjectBase),
		queue:     "mea-badges",
		evaluator: evaluator,
		timeout:   timeout,
		logger:    logger.With().Str("component", "badge_worker").Logger(),
	}
}

// Start subscribes and drains the subscription once ctx is done.
func (w *BadgeWorker) Start(ctx context.Context) error {
	sub, err := w.conn.QueueSubscribe(w.subject, w.queue, func(msg *nats.Msg) {
		w.handle(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			w.logger.Warn().Err(err).Msg("failed to drain badge subscription")
		}
	}()

	return nil
}

func (w *BadgeWorker) handle(payload []byte) {
	var event SubmissionGradedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		w.logger.Warn().Err(err).Msg("invalid graded event payload")
		return
	}
	if event.UserID == 0 {
		w.logger.Warn().Msg("graded event without user id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.evaluator.EvaluateUser(ctx, event.UserID)
}
