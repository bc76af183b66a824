package service

import (
	"context"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"
	apperrors "go-gin-meetup/pkg/app_errors"
)

type DashboardService interface {
	Get(ctx context.Context, session *model.Session) (*model.Dashboard, error)
}

type DashboardServiceImpl struct {
	eventRepo repository.EventRepository
	now       Clock
}

func NewDashboardService(eventRepo repository.EventRepository, clock Clock) DashboardService {
	if clock == nil {
		clock = SystemClock(time.UTC)
	}
	return &DashboardServiceImpl{eventRepo: eventRepo, now: clock}
}

func (s *DashboardServiceImpl) Get(ctx context.Context, session *model.Session) (*model.Dashboard, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}

	created, err := s.eventRepo.ListByCreator(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	joined, err := s.eventRepo.ListJoinedByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := model.DashboardStats{TotalEvents: len(created)}
	for _, event := range created {
		stats.TotalParticipants += event.CurrentParticipants
		if event.IsUpcoming(now) {
			stats.UpcomingEvents++
		}
	}

	return &model.Dashboard{
		CreatedEvents: created,
		JoinedEvents:  joined,
		Stats:         stats,
	}, nil
}
