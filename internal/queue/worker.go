package queue

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// JobHandler is a function that handles a specific job type.
// Handlers own all job status writes; a handler error only affects
// queue redelivery bookkeeping, never the worker itself.
type JobHandler func(ctx context.Context, msg *JobMessage) error

// WorkerPool consumes queue messages with bounded concurrency and a
// rate ceiling. Each message runs to completion on one worker without
// preemption; only different jobs run concurrently.
type WorkerPool struct {
	queueMgr     *Manager
	handlers     map[string]JobHandler
	logger       arbor.ILogger
	concurrency  int
	pollInterval time.Duration
	limiter      *rate.Limiter
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewWorkerPool creates a worker pool. rateLimit jobs may start per
// rateWindow across all workers, bounding OCR/NLP resource pressure.
func NewWorkerPool(queueMgr *Manager, concurrency int, pollInterval time.Duration, rateLimit int, rateWindow time.Duration, logger arbor.ILogger) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 3
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if rateLimit <= 0 {
		rateLimit = 10
	}
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queueMgr:     queueMgr,
		handlers:     make(map[string]JobHandler),
		logger:       logger,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		limiter:      rate.NewLimiter(rate.Every(rateWindow/time.Duration(rateLimit)), rateLimit),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// RegisterHandler registers a job type handler
func (wp *WorkerPool) RegisterHandler(jobType string, handler JobHandler) {
	wp.handlers[jobType] = handler
	wp.logger.Debug().
		Str("job_type", jobType).
		Msg("Job handler registered")
}

// Start starts the worker goroutines
func (wp *WorkerPool) Start() error {
	wp.logger.Info().
		Int("concurrency", wp.concurrency).
		Msg("Starting worker pool")

	for i := 0; i < wp.concurrency; i++ {
		go wp.worker(i)
	}

	return nil
}

// Stop gracefully stops the worker pool
func (wp *WorkerPool) Stop() error {
	wp.logger.Info().Msg("Stopping worker pool")
	wp.cancel()
	return nil
}

// worker is the main worker loop that processes messages
func (wp *WorkerPool) worker(workerID int) {
	// Stagger worker starts to reduce claim contention
	staggerDelay := (wp.pollInterval / time.Duration(wp.concurrency)) * time.Duration(workerID)
	if staggerDelay > 0 {
		time.Sleep(staggerDelay)
	}

	wp.logger.Debug().
		Int("worker_id", workerID).
		Msg("Worker started")

	ticker := time.NewTicker(wp.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug().
				Int("worker_id", workerID).
				Msg("Worker stopped")
			return

		case <-ticker.C:
			if err := wp.processMessage(workerID); err != nil && !errors.Is(err, ErrNoMessage) {
				wp.logger.Warn().
					Err(err).
					Int("worker_id", workerID).
					Msg("Error processing message")
			}
		}
	}
}

// processMessage receives and processes a single message
func (wp *WorkerPool) processMessage(workerID int) error {
	msg, deleteFn, err := wp.queueMgr.Receive(wp.ctx)
	if err != nil {
		return err
	}

	handler, exists := wp.handlers[msg.Type]
	if !exists {
		wp.logger.Error().
			Str("type", msg.Type).
			Str("message_id", msg.ID).
			Msg("No handler registered for job type")
		// Delete message with unknown type; redelivery cannot fix it
		if delErr := deleteFn(); delErr != nil {
			wp.logger.Warn().Err(delErr).Msg("Failed to delete unknown job type message")
		}
		return nil
	}

	// Rate ceiling: wait for a token before starting the job
	if err := wp.limiter.Wait(wp.ctx); err != nil {
		// Shutting down; the claimed message redelivers after its
		// visibility timeout per the at-least-once contract
		return nil
	}

	wp.logger.Debug().
		Str("message_id", msg.ID).
		Str("type", msg.Type).
		Int("worker_id", workerID).
		Msg("Processing message")

	startTime := time.Now()
	handlerErr := handler(wp.ctx, msg)
	duration := time.Since(startTime)

	if handlerErr != nil {
		wp.logger.Error().
			Err(handlerErr).
			Str("message_id", msg.ID).
			Str("type", msg.Type).
			Dur("duration", duration).
			Int("worker_id", workerID).
			Msg("Job handler failed")
	} else {
		wp.logger.Info().
			Str("message_id", msg.ID).
			Str("type", msg.Type).
			Dur("duration", duration).
			Int("worker_id", workerID).
			Msg("Job completed")
	}

	// The handler records job failure into the job record itself, so
	// the message is always deleted; failed jobs are re-enqueued as new
	// jobs, never retried in place.
	if err := deleteFn(); err != nil {
		wp.logger.Warn().
			Err(err).
			Str("message_id", msg.ID).
			Msg("Failed to delete message after processing")
		return err
	}

	return handlerErr
}
