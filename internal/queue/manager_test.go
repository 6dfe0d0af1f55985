package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

func openTestStore(t *testing.T) *badgerhold.Store {
	t.Helper()
	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestManager(t *testing.T) *Manager {
	return NewManager(openTestStore(t), arbor.NewLogger())
}

func TestEnqueueReceiveDelete(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	msg := NewJobMessage(JobTypeProcessTemplate, "job-1", "tpl-1", "sources/a.pdf", "a.pdf", "application/pdf")
	require.NoError(t, mgr.Enqueue(ctx, msg, 0))

	count, err := mgr.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	received, deleteFn, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, msg.JobID, received.JobID)
	assert.Equal(t, msg.TemplateID, received.TemplateID)

	require.NoError(t, deleteFn())

	count, err = mgr.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReceive_EmptyQueue(t *testing.T) {
	mgr := newTestManager(t)

	_, _, err := mgr.Receive(context.Background())
	assert.ErrorIs(t, err, ErrNoMessage)
}

func TestReceive_ClaimedMessageIsInvisible(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	msg := NewJobMessage(JobTypeProcessTemplate, "job-1", "tpl-1", "k", "f", "m")
	require.NoError(t, mgr.Enqueue(ctx, msg, 0))

	_, _, err := mgr.Receive(ctx)
	require.NoError(t, err)

	// The claimed message is hidden for the visibility timeout
	_, _, err = mgr.Receive(ctx)
	assert.ErrorIs(t, err, ErrNoMessage)
}

func TestReceive_AbandonedMessageRedelivers(t *testing.T) {
	mgr := newTestManager(t)
	mgr.visibilityTimeout = 20 * time.Millisecond
	ctx := context.Background()

	msg := NewJobMessage(JobTypeProcessTemplate, "job-1", "tpl-1", "k", "f", "m")
	require.NoError(t, mgr.Enqueue(ctx, msg, 0))

	// Claim without deleting, simulating a crashed worker
	_, _, err := mgr.Receive(ctx)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	redelivered, deleteFn, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, msg.JobID, redelivered.JobID)
	require.NoError(t, deleteFn())
}

func TestEnqueue_DelayPostponesVisibility(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	msg := NewJobMessage(JobTypeProcessTemplate, "job-1", "tpl-1", "k", "f", "m")
	require.NoError(t, mgr.Enqueue(ctx, msg, 40*time.Millisecond))

	_, _, err := mgr.Receive(ctx)
	assert.ErrorIs(t, err, ErrNoMessage)

	assert.Eventually(t, func() bool {
		_, deleteFn, err := mgr.Receive(ctx)
		if err != nil {
			return false
		}
		_ = deleteFn()
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestReceive_FIFOByEnqueueTime(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	first := NewJobMessage(JobTypeProcessTemplate, "job-first", "tpl-1", "k", "f", "m")
	require.NoError(t, mgr.Enqueue(ctx, first, 0))

	second := NewJobMessage(JobTypeProcessTemplate, "job-second", "tpl-1", "k", "f", "m")
	require.NoError(t, mgr.Enqueue(ctx, second, 0))

	received, deleteFn, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-first", received.JobID)
	require.NoError(t, deleteFn())
}

func TestWorkerPool_ProcessesMessages(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	var handled int64
	pool := NewWorkerPool(mgr, 2, 10*time.Millisecond, 100, time.Second, arbor.NewLogger())
	pool.RegisterHandler(JobTypeProcessTemplate, func(ctx context.Context, msg *JobMessage) error {
		atomic.AddInt64(&handled, 1)
		return nil
	})

	for i := 0; i < 5; i++ {
		msg := NewJobMessage(JobTypeProcessTemplate, "job", "tpl", "k", "f", "m")
		require.NoError(t, mgr.Enqueue(ctx, msg, 0))
	}

	require.NoError(t, pool.Start())
	defer pool.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&handled) == 5
	}, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		count, err := mgr.PendingCount(ctx)
		return err == nil && count == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWorkerPool_HandlerErrorStillDeletesMessage(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	pool := NewWorkerPool(mgr, 1, 10*time.Millisecond, 100, time.Second, arbor.NewLogger())
	pool.RegisterHandler(JobTypeProcessTemplate, func(ctx context.Context, msg *JobMessage) error {
		return assert.AnError
	})

	msg := NewJobMessage(JobTypeProcessTemplate, "job", "tpl", "k", "f", "m")
	require.NoError(t, mgr.Enqueue(ctx, msg, 0))

	require.NoError(t, pool.Start())
	defer pool.Stop()

	// Failure is recorded by the handler on the job record; the message
	// itself must not redeliver forever.
	assert.Eventually(t, func() bool {
		count, err := mgr.PendingCount(ctx)
		return err == nil && count == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func TestJobMessage_RoundTrip(t *testing.T) {
	msg := NewJobMessage(JobTypeProcessTemplate, "job-1", "tpl-1", "sources/a.pdf", "a.pdf", "application/pdf")

	body, err := msg.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, msg.Type, decoded.Type)
	assert.Equal(t, msg.SourceKey, decoded.SourceKey)
}
