package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	gradingSubject    = "kodigo.submissions.grade"
	gradingQueueGroup = "kodigo-graders"
)

// gradingJob is the payload carried between Submit and the grading worker.
type gradingJob struct {
	SubmissionID uint `json:"submissionId"`
}

// GradingQueue decouples submission intake from AI evaluation. Enqueue must
// be cheap; the worker pulls jobs and drives the evaluation pipeline.
type GradingQueue interface {
	Enqueue(ctx context.Context, submissionID uint) error
	Start(ctx context.Context, grade func(ctx context.Context, submissionID uint)) error
	Close()
}

// NewGradingQueue returns a NATS-backed queue when a connection is available,
// otherwise an in-process buffered channel. The channel variant does not
// survive restarts; pending submissions are re-gradable via the admin
// evaluate endpoint.
func NewGradingQueue(conn *nats.Conn, buffer int, logger zerolog.Logger) GradingQueue {
	log := logger.With().Str("component", "grading_queue").Logger()
	if conn != nil {
		return &natsGradingQueue{conn: conn, logger: log}
	}

	if buffer <= 0 {
		buffer = 64
	}
	log.Warn().Msg("nats unavailable, using in-process grading queue")
	return &channelGradingQueue{jobs: make(chan gradingJob, buffer), logger: log}
}

type natsGradingQueue struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	logger zerolog.Logger
}

func (q *natsGradingQueue) Enqueue(_ context.Context, submissionID uint) error {
	payload, err := json.Marshal(gradingJob{SubmissionID: submissionID})
	if err != nil {
		return err
	}
	return q.conn.Publish(gradingSubject, payload)
}

func (q *natsGradingQueue) Start(ctx context.Context, grade func(ctx context.Context, submissionID uint)) error {
	sub, err := q.conn.QueueSubscribe(gradingSubject, gradingQueueGroup, func(msg *nats.Msg) {
		var job gradingJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			q.logger.Error().Err(err).Msg("discarding malformed grading job")
			return
		}
		grade(ctx, job.SubmissionID)
	})
	if err != nil {
		return err
	}

	q.sub = sub
	q.logger.Info().Str("subject", gradingSubject).Msg("grading worker subscribed")
	return nil
}

func (q *natsGradingQueue) Close() {
	if q.sub != nil {
		if err := q.sub.Drain(); err != nil {
			q.logger.Warn().Err(err).Msg("failed to drain grading subscription")
		}
	}
}

type channelGradingQueue struct {
	jobs    chan gradingJob
	logger  zerolog.Logger
	closeMu sync.Mutex
	closed  bool
	wg      sync.WaitGroup
}

var errQueueFull = errors.New("grading queue full")

func (q *channelGradingQueue) Enqueue(ctx context.Context, submissionID uint) error {
	q.closeMu.Lock()
	if q.closed {
		q.closeMu.Unlock()
		return errors.New("grading queue closed")
	}
	q.closeMu.Unlock()

	select {
	case q.jobs <- gradingJob{SubmissionID: submissionID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return errQueueFull
	}
}

func (q *channelGradingQueue) Start(ctx context.Context, grade func(ctx context.Context, submissionID uint)) error {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case job, ok := <-q.jobs:
				if !ok {
					return
				}
				grade(ctx, job.SubmissionID)
			case <-ctx.Done():
				return
			}
		}
	}()
	q.logger.Info().Msg("in-process grading worker started")
	return nil
}

func (q *channelGradingQueue) Close() {
	q.closeMu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.closeMu.Unlock()
	q.wg.Wait()
}
