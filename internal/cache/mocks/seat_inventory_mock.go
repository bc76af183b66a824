package mocks

import (
	"context"
	"testing"

	"go-gin-meetup/internal/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSeatInventoryManager struct {
	mock.Mock
}

func NewMockSeatInventoryManager(t *testing.T) *MockSeatInventoryManager {
	m := &MockSeatInventoryManager{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSeatInventoryManager) WarmUp(ctx context.Context, eventID uuid.UUID, capacity int, members []uuid.UUID) error {
	args := m.Called(ctx, eventID, capacity, members)
	return args.Error(0)
}

func (m *MockSeatInventoryManager) GetSeats(ctx context.Context, eventID uuid.UUID) (cache.SeatInfo, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(cache.SeatInfo), args.Error(1)
}

func (m *MockSeatInventoryManager) Reserve(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (cache.SeatInfo, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Get(0).(cache.SeatInfo), args.Error(1)
}

func (m *MockSeatInventoryManager) Release(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatInventoryManager) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}
