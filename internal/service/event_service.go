package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-gin-meetup/internal/cache"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"
	apperrors "go-gin-meetup/pkg/app_errors"
	"go-gin-meetup/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	// List limit 為 0 表示不限筆數
	List(ctx context.Context, scope model.EventScope, search string, limit int) ([]*model.Event, error)
	// GetDetail session 可為 nil (未登入)
	GetDetail(ctx context.Context, session *model.Session, id uuid.UUID) (*model.EventDetail, error)
	Create(ctx context.Context, session *model.Session, params model.CreateEventParams) (*model.Event, error)
	// Update 只有主辦人可以修改
	Update(ctx context.Context, session *model.Session, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	ListParticipants(ctx context.Context, id uuid.UUID) ([]*model.EventParticipant, error)
}

type EventServiceImpl struct {
	repo            repository.EventRepository
	participantRepo repository.ParticipantRepository
	profileRepo     repository.ProfileRepository
	seats           cache.SeatInventoryManager
	now             Clock
}

func NewEventService(
	repo repository.EventRepository,
	participantRepo repository.ParticipantRepository,
	profileRepo repository.ProfileRepository,
	seats cache.SeatInventoryManager,
	clock Clock,
) EventService {
	if clock == nil {
		clock = SystemClock(time.UTC)
	}
	return &EventServiceImpl{
		repo:            repo,
		participantRepo: participantRepo,
		profileRepo:     profileRepo,
		seats:           seats,
		now:             clock,
	}
}

func (s *EventServiceImpl) List(ctx context.Context, scope model.EventScope, search string, limit int) ([]*model.Event, error) {
	if scope == "" {
		scope = model.EventScopeUpcoming
	}
	if !scope.IsValid() || limit < 0 {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.List(ctx, model.EventFilter{
		Scope:  scope,
		Search: search,
		Today:  s.now().Format(model.DateLayout),
		Limit:  limit,
	})
}

func (s *EventServiceImpl) GetDetail(ctx context.Context, session *model.Session, id uuid.UUID) (*model.EventDetail, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	organizer, err := s.profileRepo.FindByID(ctx, event.CreatedBy)
	if err != nil && !errors.Is(err, apperrors.ErrProfileNotFound) {
		return nil, err
	}

	detail := &model.EventDetail{
		Event:          event,
		Organizer:      organizer,
		IsUpcoming:     event.IsUpcoming(s.now()),
		IsFull:         event.IsFull(),
		AvailableSeats: event.AvailableSeats(),
	}

	if session.IsAuthenticated() {
		detail.IsOrganizer = event.IsOwnedBy(session.UserID)
		detail.IsParticipant, err = s.participantRepo.Exists(ctx, id, session.UserID)
		if err != nil {
			return nil, err
		}
	}

	return detail, nil
}

func (s *EventServiceImpl) Create(ctx context.Context, session *model.Session, params model.CreateEventParams) (*model.Event, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if err := params.Validate(s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	// created_by 參照 profiles，先確認已註冊
	if _, err := s.profileRepo.FindByID(ctx, session.UserID); err != nil {
		return nil, err
	}

	event := &model.Event{
		Title:           params.Title,
		Description:     params.Description,
		Date:            params.Date,
		Time:            params.Time,
		Location:        params.Location,
		MaxParticipants: params.MaxParticipants,
		ImageURL:        params.ImageURL,
		CreatedBy:       session.UserID,
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	if err := s.seats.WarmUp(ctx, created.ID, created.MaxParticipants, nil); err != nil {
		logger.WithComponent("event").Warn("failed to warm seat cache", zap.String("event_id", created.ID.String()), zap.Error(err))
	}

	return created, nil
}

func (s *EventServiceImpl) Update(ctx context.Context, session *model.Session, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsOwnedBy(session.UserID) {
		return nil, apperrors.ErrForbidden
	}
	if params.MaxParticipants != nil && *params.MaxParticipants < event.CurrentParticipants {
		return nil, fmt.Errorf("%w: max_participants below current participants", apperrors.ErrInvalidInput)
	}

	updated, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	// 容量變更後讓座位快取重新預熱
	if params.MaxParticipants != nil {
		if err := s.seats.Invalidate(ctx, id); err != nil {
			logger.WithComponent("event").Warn("failed to invalidate seat cache", zap.String("event_id", id.String()), zap.Error(err))
		}
	}

	return updated, nil
}

func (s *EventServiceImpl) ListParticipants(ctx context.Context, id uuid.UUID) ([]*model.EventParticipant, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.participantRepo.ListByEventID(ctx, id)
}
