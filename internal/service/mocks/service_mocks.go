package mocks

import (
	"context"
	"testing"

	"go-gin-meetup/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func register(t *testing.T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

type MockEventService struct {
	mock.Mock
}

func NewMockEventService(t *testing.T) *MockEventService {
	m := &MockEventService{}
	register(t, &m.Mock)
	return m
}

func (m *MockEventService) List(ctx context.Context, scope model.EventScope, search string, limit int) ([]*model.Event, error) {
	args := m.Called(ctx, scope, search, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *MockEventService) GetDetail(ctx context.Context, session *model.Session, id uuid.UUID) (*model.EventDetail, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventDetail), args.Error(1)
}

func (m *MockEventService) Create(ctx context.Context, session *model.Session, params model.CreateEventParams) (*model.Event, error) {
	args := m.Called(ctx, session, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventService) Update(ctx context.Context, session *model.Session, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, session, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventService) ListParticipants(ctx context.Context, id uuid.UUID) ([]*model.EventParticipant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventParticipant), args.Error(1)
}

type MockParticipationService struct {
	mock.Mock
}

func NewMockParticipationService(t *testing.T) *MockParticipationService {
	m := &MockParticipationService{}
	register(t, &m.Mock)
	return m
}

func (m *MockParticipationService) state(args mock.Arguments) (*model.ParticipationState, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ParticipationState), args.Error(1)
}

func (m *MockParticipationService) Status(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	return m.state(m.Called(ctx, session, eventID))
}

func (m *MockParticipationService) Toggle(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	return m.state(m.Called(ctx, session, eventID))
}

func (m *MockParticipationService) Join(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	return m.state(m.Called(ctx, session, eventID))
}

func (m *MockParticipationService) Leave(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	return m.state(m.Called(ctx, session, eventID))
}

func (m *MockParticipationService) Reconcile(ctx context.Context, eventID uuid.UUID) (*model.ReconcileResult, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconcileResult), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func NewMockProfileService(t *testing.T) *MockProfileService {
	m := &MockProfileService{}
	register(t, &m.Mock)
	return m
}

func (m *MockProfileService) profile(args mock.Arguments) (*model.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileService) Register(ctx context.Context, session *model.Session, params model.UpdateProfileParams) (*model.Profile, error) {
	return m.profile(m.Called(ctx, session, params))
}

func (m *MockProfileService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return m.profile(m.Called(ctx, id))
}

func (m *MockProfileService) Me(ctx context.Context, session *model.Session) (*model.Profile, error) {
	return m.profile(m.Called(ctx, session))
}

func (m *MockProfileService) Update(ctx context.Context, session *model.Session, params model.UpdateProfileParams) (*model.Profile, error) {
	return m.profile(m.Called(ctx, session, params))
}

type MockDashboardService struct {
	mock.Mock
}

func NewMockDashboardService(t *testing.T) *MockDashboardService {
	m := &MockDashboardService{}
	register(t, &m.Mock)
	return m
}

func (m *MockDashboardService) Get(ctx context.Context, session *model.Session) (*model.Dashboard, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dashboard), args.Error(1)
}
