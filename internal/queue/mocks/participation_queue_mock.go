package mocks

import (
	"context"
	"testing"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/queue"

	"github.com/stretchr/testify/mock"
)

type MockParticipationQueue struct {
	mock.Mock
}

func NewMockParticipationQueue(t *testing.T) *MockParticipationQueue {
	m := &MockParticipationQueue{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockParticipationQueue) PublishChange(ctx context.Context, change *model.ParticipationChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockParticipationQueue) SubscribeChanges(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
