package mocks

import (
	"context"
	"testing"

	"go-gin-meetup/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockParticipantRepository struct {
	mock.Mock
}

func NewMockParticipantRepository(t *testing.T) *MockParticipantRepository {
	m := &MockParticipantRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockParticipantRepository) Exists(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.EventParticipant, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventParticipant), args.Error(1)
}

func (m *MockParticipantRepository) ListUserIDsByEventID(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockParticipantRepository) Create(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) (*model.EventParticipant, error) {
	args := m.Called(ctx, tx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventParticipant), args.Error(1)
}

func (m *MockParticipantRepository) Delete(ctx context.Context, tx pgx.Tx, eventID, userID uuid.UUID) error {
	args := m.Called(ctx, tx, eventID, userID)
	return args.Error(0)
}

func (m *MockParticipantRepository) CountByEventID(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, eventID)
	return args.Int(0), args.Error(1)
}
