package service_test

import (
	"context"
	"errors"
	"testing"

	cacheMocks "go-gin-meetup/internal/cache/mocks"
	"go-gin-meetup/internal/model"
	repoMocks "go-gin-meetup/internal/repository/mocks"
	"go-gin-meetup/internal/service"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupEventService(t *testing.T) (service.EventService, *repoMocks.MockEventRepository, *repoMocks.MockParticipantRepository, *repoMocks.MockProfileRepository, *cacheMocks.MockSeatInventoryManager) {
	eventRepo := repoMocks.NewMockEventRepository(t)
	participantRepo := repoMocks.NewMockParticipantRepository(t)
	profileRepo := repoMocks.NewMockProfileRepository(t)
	seats := cacheMocks.NewMockSeatInventoryManager(t)
	return service.NewEventService(eventRepo, participantRepo, profileRepo, seats, fixedClock), eventRepo, participantRepo, profileRepo, seats
}

func ptr[T any](v T) *T { return &v }

func TestEventService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults To Upcoming", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		events := []*model.Event{newUpcomingEvent(uuid.New(), 10, 0)}
		eventRepo.On("List", ctx, model.EventFilter{Scope: model.EventScopeUpcoming, Search: "go", Today: "2026-06-01"}).Return(events, nil).Once()

		got, err := svc.List(ctx, "", "go", 0)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("Past Scope", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		eventRepo.On("List", ctx, model.EventFilter{Scope: model.EventScopePast, Today: "2026-06-01"}).Return([]*model.Event{}, nil).Once()

		got, err := svc.List(ctx, model.EventScopePast, "", 0)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Failed - Invalid Scope", func(t *testing.T) {
		svc, _, _, _, _ := setupEventService(t)

		_, err := svc.List(ctx, "tomorrow", "", 0)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Limit", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		eventRepo.On("List", ctx, model.EventFilter{Scope: model.EventScopeUpcoming, Today: "2026-06-01", Limit: 3}).Return([]*model.Event{}, nil).Once()

		_, err := svc.List(ctx, model.EventScopeUpcoming, "", 3)

		require.NoError(t, err)
	})

	t.Run("Failed - Negative Limit", func(t *testing.T) {
		svc, _, _, _, _ := setupEventService(t)

		_, err := svc.List(ctx, model.EventScopeUpcoming, "", -1)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventService_GetDetail(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous", func(t *testing.T) {
		svc, eventRepo, _, profileRepo, _ := setupEventService(t)
		owner := &model.Profile{ID: uuid.New(), Email: "owner@test.com"}
		event := newUpcomingEvent(owner.ID, 2, 2)
		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()
		profileRepo.On("FindByID", ctx, owner.ID).Return(owner, nil).Once()

		detail, err := svc.GetDetail(ctx, nil, event.ID)

		require.NoError(t, err)
		assert.Equal(t, owner, detail.Organizer)
		assert.True(t, detail.IsUpcoming)
		assert.True(t, detail.IsFull)
		assert.Equal(t, 0, detail.AvailableSeats)
		assert.False(t, detail.IsParticipant)
		assert.False(t, detail.IsOrganizer)
	})

	t.Run("Participant Without Organizer Profile", func(t *testing.T) {
		svc, eventRepo, participantRepo, profileRepo, _ := setupEventService(t)
		session := newSession()
		event := newUpcomingEvent(uuid.New(), 5, 1)
		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()
		profileRepo.On("FindByID", ctx, event.CreatedBy).Return(nil, apperrors.ErrProfileNotFound).Once()
		participantRepo.On("Exists", ctx, event.ID, session.UserID).Return(true, nil).Once()

		detail, err := svc.GetDetail(ctx, session, event.ID)

		require.NoError(t, err)
		assert.Nil(t, detail.Organizer)
		assert.True(t, detail.IsParticipant)
		assert.Equal(t, 4, detail.AvailableSeats)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		id := uuid.New()
		eventRepo.On("FindByID", ctx, id).Return(nil, apperrors.ErrEventNotFound).Once()

		_, err := svc.GetDetail(ctx, nil, id)

		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	params := model.CreateEventParams{
		Title:           "Go Meetup",
		Description:     "talks and pizza",
		Date:            "2026-07-01",
		Time:            "19:00",
		Location:        "Taipei",
		MaxParticipants: 30,
	}

	t.Run("Success", func(t *testing.T) {
		svc, eventRepo, _, profileRepo, seats := setupEventService(t)
		session := newSession()
		stored := newUpcomingEvent(session.UserID, 30, 0)
		profileRepo.On("FindByID", ctx, session.UserID).Return(&model.Profile{ID: session.UserID}, nil).Once()
		eventRepo.On("Create", ctx, mock.MatchedBy(func(e *model.Event) bool {
			return e.CreatedBy == session.UserID && e.CurrentParticipants == 0 && e.MaxParticipants == 30
		})).Return(stored, nil).Once()
		seats.On("WarmUp", ctx, stored.ID, 30, []uuid.UUID(nil)).Return(errors.New("redis down")).Once()

		created, err := svc.Create(ctx, session, params)

		require.NoError(t, err)
		assert.Equal(t, stored.ID, created.ID)
	})

	t.Run("Failed - Invalid Input", func(t *testing.T) {
		svc, _, _, _, _ := setupEventService(t)
		bad := params
		bad.MaxParticipants = 0

		_, err := svc.Create(ctx, newSession(), bad)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - Past Date", func(t *testing.T) {
		svc, _, _, _, _ := setupEventService(t)
		past := params
		past.Date = "2026-05-31"

		_, err := svc.Create(ctx, newSession(), past)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - Profile Missing", func(t *testing.T) {
		svc, _, _, profileRepo, _ := setupEventService(t)
		session := newSession()
		profileRepo.On("FindByID", ctx, session.UserID).Return(nil, apperrors.ErrProfileNotFound).Once()

		_, err := svc.Create(ctx, session, params)

		assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	})

	t.Run("Failed - Unauthenticated", func(t *testing.T) {
		svc, _, _, _, _ := setupEventService(t)

		_, err := svc.Create(ctx, nil, params)

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Capacity Change Invalidates Seats", func(t *testing.T) {
		svc, eventRepo, _, _, seats := setupEventService(t)
		session := newSession()
		event := newUpcomingEvent(session.UserID, 10, 4)
		params := model.UpdateEventParams{MaxParticipants: ptr(20)}
		updated := copyEvent(event)
		updated.MaxParticipants = 20

		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()
		eventRepo.On("Update", ctx, event.ID, params).Return(updated, nil).Once()
		seats.On("Invalidate", ctx, event.ID).Return(nil).Once()

		got, err := svc.Update(ctx, session, event.ID, params)

		require.NoError(t, err)
		assert.Equal(t, 20, got.MaxParticipants)
	})

	t.Run("Success - Title Only", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		session := newSession()
		event := newUpcomingEvent(session.UserID, 10, 4)
		params := model.UpdateEventParams{Title: ptr("Renamed")}

		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()
		eventRepo.On("Update", ctx, event.ID, params).Return(event, nil).Once()

		_, err := svc.Update(ctx, session, event.ID, params)

		require.NoError(t, err)
	})

	t.Run("Failed - Not Owner", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		event := newUpcomingEvent(uuid.New(), 10, 4)
		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()

		_, err := svc.Update(ctx, newSession(), event.ID, model.UpdateEventParams{Title: ptr("x")})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Failed - Capacity Below Current", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		session := newSession()
		event := newUpcomingEvent(session.UserID, 10, 4)
		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()

		_, err := svc.Update(ctx, session, event.ID, model.UpdateEventParams{MaxParticipants: ptr(3)})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Failed - Empty", func(t *testing.T) {
		svc, _, _, _, _ := setupEventService(t)

		_, err := svc.Update(ctx, newSession(), uuid.New(), model.UpdateEventParams{})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventService_ListParticipants(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, eventRepo, participantRepo, _, _ := setupEventService(t)
		event := newUpcomingEvent(uuid.New(), 10, 1)
		participants := []*model.EventParticipant{{ID: uuid.New(), EventID: event.ID, UserID: uuid.New()}}
		eventRepo.On("FindByID", ctx, event.ID).Return(event, nil).Once()
		participantRepo.On("ListByEventID", ctx, event.ID).Return(participants, nil).Once()

		got, err := svc.ListParticipants(ctx, event.ID)

		require.NoError(t, err)
		assert.Equal(t, participants, got)
	})

	t.Run("Failed - NotFound", func(t *testing.T) {
		svc, eventRepo, _, _, _ := setupEventService(t)
		id := uuid.New()
		eventRepo.On("FindByID", ctx, id).Return(nil, apperrors.ErrEventNotFound).Once()

		_, err := svc.ListParticipants(ctx, id)

		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}
