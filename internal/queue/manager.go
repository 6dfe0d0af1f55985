// -----------------------------------------------------------------------
// Durable queue manager - at-least-once delivery over the embedded store
// -----------------------------------------------------------------------

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// ErrNoMessage is returned when no message is currently visible
var ErrNoMessage = errors.New("no messages in queue")

// defaultVisibilityTimeout is how long a received message stays
// invisible before it is considered abandoned and redelivered.
const defaultVisibilityTimeout = 5 * time.Minute

// queueRecord is the persisted form of an enqueued message. Messages
// survive process restarts; an in-flight record whose VisibleAt has
// passed is redelivered (at-least-once contract).
type queueRecord struct {
	ID        string `badgerhold:"key"`
	Body      []byte
	VisibleAt time.Time // zero/past = deliverable
	Receives  int
	CreatedAt time.Time
}

// Manager provides queue operations only, no business logic. Ordering
// between messages is best-effort FIFO by enqueue time, not a contract.
type Manager struct {
	store             *badgerhold.Store
	logger            arbor.ILogger
	visibilityTimeout time.Duration
}

// NewManager creates a queue manager over an open badgerhold store
func NewManager(store *badgerhold.Store, logger arbor.ILogger) *Manager {
	return &Manager{
		store:             store,
		logger:            logger,
		visibilityTimeout: defaultVisibilityTimeout,
	}
}

// Enqueue persists a message, optionally delayed by delay > 0
func (m *Manager) Enqueue(ctx context.Context, msg *JobMessage, delay time.Duration) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	visibleAt := time.Now()
	if delay > 0 {
		visibleAt = visibleAt.Add(delay)
	}

	rec := queueRecord{
		ID:        uuid.New().String(),
		Body:      body,
		VisibleAt: visibleAt,
		CreatedAt: time.Now(),
	}
	if err := m.store.Insert(rec.ID, rec); err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}

	m.logger.Debug().
		Str("message_id", rec.ID).
		Str("type", msg.Type).
		Msg("Message enqueued")
	return nil
}

// Receive pulls the next visible message and hides it for the
// visibility timeout. Returns the message and a delete function to call
// after successful processing.
func (m *Manager) Receive(ctx context.Context) (*JobMessage, func() error, error) {
	var candidates []queueRecord
	query := badgerhold.Where("VisibleAt").Le(time.Now()).SortBy("CreatedAt").Limit(1)
	if err := m.store.Find(&candidates, query); err != nil {
		return nil, nil, fmt.Errorf("failed to query queue: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil, ErrNoMessage
	}

	rec := candidates[0]
	rec.VisibleAt = time.Now().Add(m.visibilityTimeout)
	rec.Receives++
	if err := m.store.Update(rec.ID, rec); err != nil {
		// Another worker claimed it first; treat as empty poll
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil, ErrNoMessage
		}
		return nil, nil, fmt.Errorf("failed to claim message: %w", err)
	}

	msg, err := FromJSON(rec.Body)
	if err != nil {
		// Poison message: drop it so it cannot wedge the queue
		m.logger.Error().Err(err).Str("message_id", rec.ID).Msg("Dropping undecodable message")
		if delErr := m.store.Delete(rec.ID, queueRecord{}); delErr != nil {
			m.logger.Warn().Err(delErr).Msg("Failed to delete undecodable message")
		}
		return nil, nil, fmt.Errorf("invalid message body: %w", err)
	}

	deleteFn := func() error {
		if err := m.store.Delete(rec.ID, queueRecord{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("failed to delete message %s: %w", rec.ID, err)
		}
		return nil
	}

	return msg, deleteFn, nil
}

// PendingCount returns the number of persisted messages, visible or not
func (m *Manager) PendingCount(ctx context.Context) (int, error) {
	count, err := m.store.Count(queueRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue records: %w", err)
	}
	return int(count), nil
}
