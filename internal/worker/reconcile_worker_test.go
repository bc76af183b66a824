package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/queue"
	queueMocks "go-gin-meetup/internal/queue/mocks"
	"go-gin-meetup/internal/service"
	"go-gin-meetup/internal/worker"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// 簡單的 Mock 實作，只需要 Reconcile
type stubParticipationService struct {
	service.ParticipationService
	mu        sync.Mutex
	calls     map[uuid.UUID]int
	reconcile func(calls int) (*model.ReconcileResult, error)
	called    chan uuid.UUID
}

func newStubService(fn func(calls int) (*model.ReconcileResult, error)) *stubParticipationService {
	return &stubParticipationService{
		calls:     map[uuid.UUID]int{},
		reconcile: fn,
		called:    make(chan uuid.UUID, 10),
	}
}

func (s *stubParticipationService) Reconcile(ctx context.Context, eventID uuid.UUID) (*model.ReconcileResult, error) {
	s.mu.Lock()
	s.calls[eventID]++
	n := s.calls[eventID]
	s.mu.Unlock()

	result, err := s.reconcile(n)
	s.called <- eventID
	return result, err
}

func waitCall(t *testing.T, ch <-chan uuid.UUID) uuid.UUID {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("worker did not reconcile in time")
	}
	return uuid.Nil
}

func TestReconcileWorker_ProcessesChange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewMemoryParticipationQueue(&queue.MemoryQueueConfig{BufferSize: 10, RetryBackoff: 10 * time.Millisecond})
	svc := newStubService(func(int) (*model.ReconcileResult, error) {
		return &model.ReconcileResult{Before: 2, After: 1, Drifted: true}, nil
	})

	w := worker.NewReconcileWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	eventID := uuid.New()
	require.NoError(t, q.PublishChange(ctx, &model.ParticipationChange{
		RequestID: "req-1",
		EventID:   eventID,
		UserID:    uuid.New(),
		Action:    model.ParticipationActionLeave,
	}))

	assert.Equal(t, eventID, waitCall(t, svc.called))
}

func TestReconcileWorker_RetriesOnError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	q := queue.NewMemoryParticipationQueue(&queue.MemoryQueueConfig{BufferSize: 10, RetryBackoff: 10 * time.Millisecond})
	svc := newStubService(func(calls int) (*model.ReconcileResult, error) {
		if calls == 1 {
			return nil, errors.New("database unavailable")
		}
		return &model.ReconcileResult{}, nil
	})

	w := worker.NewReconcileWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	eventID := uuid.New()
	require.NoError(t, q.PublishChange(ctx, &model.ParticipationChange{EventID: eventID, Action: model.ParticipationActionJoin}))

	waitCall(t, svc.called)
	// Nack(true) 重回隊列後再處理一次
	assert.Equal(t, eventID, waitCall(t, svc.called))
}

func TestReconcileWorker_AcksMissingEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	acked := make(chan struct{}, 1)
	deliveries := make(chan queue.Delivery, 1)
	deliveries <- queue.Delivery{
		Data: &model.ParticipationChange{EventID: uuid.New()},
		Ack:  func() { acked <- struct{}{} },
		Nack: func(bool) { t.Error("missing event should not be requeued") },
	}
	close(deliveries)

	q := queueMocks.NewMockParticipationQueue(t)
	q.On("SubscribeChanges", mock.Anything).Return((<-chan queue.Delivery)(deliveries), nil).Once()

	svc := newStubService(func(int) (*model.ReconcileResult, error) {
		return nil, apperrors.ErrEventNotFound
	})

	w := worker.NewReconcileWorker(svc, q)
	require.NoError(t, w.Start(ctx))

	select {
	case <-acked:
	case <-time.After(time.Second):
		t.Fatal("delivery was not acked")
	}

	cancel()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after queue closed")
	}
}

func TestReconcileWorker_SubscribeError(t *testing.T) {
	q := queueMocks.NewMockParticipationQueue(t)
	q.On("SubscribeChanges", mock.Anything).Return(nil, errors.New("no stream")).Once()

	w := worker.NewReconcileWorker(newStubService(nil), q)

	assert.Error(t, w.Start(context.Background()))
	<-w.Done()
}
