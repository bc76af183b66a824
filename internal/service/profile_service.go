package service

import (
	"context"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/repository"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
)

type ProfileService interface {
	// Register 為目前登入身分建立 profile
	Register(ctx context.Context, session *model.Session, params model.UpdateProfileParams) (*model.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Me(ctx context.Context, session *model.Session) (*model.Profile, error)
	Update(ctx context.Context, session *model.Session, params model.UpdateProfileParams) (*model.Profile, error)
}

type ProfileServiceImpl struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &ProfileServiceImpl{repo: repo}
}

func (s *ProfileServiceImpl) Register(ctx context.Context, session *model.Session, params model.UpdateProfileParams) (*model.Profile, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if session.Email == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Create(ctx, &model.Profile{
		ID:        session.UserID,
		Email:     session.Email,
		FullName:  params.FullName,
		AvatarURL: params.AvatarURL,
		Bio:       params.Bio,
	})
}

func (s *ProfileServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProfileServiceImpl) Me(ctx context.Context, session *model.Session) (*model.Profile, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, session.UserID)
}

func (s *ProfileServiceImpl) Update(ctx context.Context, session *model.Session, params model.UpdateProfileParams) (*model.Profile, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Update(ctx, session.UserID, params)
}
