package service

import (
	"context"
	"errors"
	"time"

	"go-gin-meetup/internal/cache"
	"go-gin-meetup/internal/database"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/repository"
	apperrors "go-gin-meetup/pkg/app_errors"
	"go-gin-meetup/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ParticipationService interface {
	// 查詢目前使用者是否參加
	Status(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error)
	// 依目前狀態切換參加/退出
	Toggle(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error)
	// 參加：Redis 預留座位 + DB 交易(寫入參加者與計數)
	Join(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error)
	// 退出：DB 交易(刪除參加者與計數) + 釋放 Redis 座位
	Leave(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error)
	// 校正：以參加者筆數重算 current_participants
	Reconcile(ctx context.Context, eventID uuid.UUID) (*model.ReconcileResult, error)
}

type ParticipationServiceImpl struct {
	db              database.TxBeginner
	eventRepo       repository.EventRepository
	participantRepo repository.ParticipantRepository
	seats           cache.SeatInventoryManager
	changes         queue.ParticipationQueue
	now             Clock
}

func NewParticipationService(
	db database.TxBeginner,
	eventRepo repository.EventRepository,
	participantRepo repository.ParticipantRepository,
	seats cache.SeatInventoryManager,
	changes queue.ParticipationQueue,
	clock Clock,
) ParticipationService {
	if clock == nil {
		clock = SystemClock(time.UTC)
	}
	return &ParticipationServiceImpl{
		db:              db,
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		seats:           seats,
		changes:         changes,
		now:             clock,
	}
}

func (s *ParticipationServiceImpl) log() *zap.Logger {
	return logger.WithComponent("participation")
}

// checkActionable 主辦人不能參加自己的活動，已開始的活動不能變更
func (s *ParticipationServiceImpl) checkActionable(session *model.Session, event *model.Event) error {
	if event.IsOwnedBy(session.UserID) {
		return apperrors.ErrOwnerCannotParticipate
	}
	if !event.IsUpcoming(s.now()) {
		return apperrors.ErrEventNotUpcoming
	}
	return nil
}

func (s *ParticipationServiceImpl) Status(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	exists, err := s.participantRepo.Exists(ctx, eventID, session.UserID)
	if err != nil {
		return nil, err
	}
	return model.NewParticipationState(event, session.UserID, exists), nil
}

func (s *ParticipationServiceImpl) Toggle(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	exists, err := s.participantRepo.Exists(ctx, eventID, session.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return s.Leave(ctx, session, eventID)
	}
	return s.Join(ctx, session, eventID)
}

func (s *ParticipationServiceImpl) Join(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	userID := session.UserID

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkActionable(session, event); err != nil {
		return nil, err
	}

	// 1. Redis 預留座位(容量與重複參加的快速檢查)
	if err := s.reserveSeat(ctx, event, userID); err != nil {
		return nil, err
	}

	// 2. DB 交易：參加者與計數一起提交
	updated, err := s.joinTx(ctx, eventID, userID)
	if err != nil {
		// 回滾 Redis：使用 context.Background()，確保請求取消時仍會執行
		s.compensateReservation(context.Background(), eventID, userID, err)
		return nil, err
	}

	s.publish(ctx, eventID, userID, model.ParticipationActionJoin)

	return model.NewParticipationState(updated, userID, true), nil
}

func (s *ParticipationServiceImpl) reserveSeat(ctx context.Context, event *model.Event, userID uuid.UUID) error {
	_, err := s.seats.Reserve(ctx, event.ID, userID)
	switch {
	case errors.Is(err, apperrors.ErrSeatsNotWarmed):
		return s.warmAndReserve(ctx, event, userID)
	case errors.Is(err, apperrors.ErrEventFull), errors.Is(err, apperrors.ErrAlreadyParticipant):
		stale, checkErr := s.isStaleRejection(ctx, event, userID, err)
		if checkErr != nil {
			return checkErr
		}
		if !stale {
			return err
		}
		// 快取多算了座位或參加者，重建後只再試一次
		s.log().Warn("seat cache rejected join but database disagrees, rebuilding",
			zap.String("event_id", event.ID.String()), zap.String("user_id", userID.String()), zap.NamedError("rejection", err))
		if err := s.seats.Invalidate(ctx, event.ID); err != nil {
			return err
		}
		return s.warmAndReserve(ctx, event, userID)
	}
	return err
}

func (s *ParticipationServiceImpl) warmAndReserve(ctx context.Context, event *model.Event, userID uuid.UUID) error {
	if err := s.warmSeats(ctx, event); err != nil {
		return err
	}
	_, err := s.seats.Reserve(ctx, event.ID, userID)
	return err
}

// isStaleRejection 以 DB 判斷快取的額滿/重複參加是否成立
func (s *ParticipationServiceImpl) isStaleRejection(ctx context.Context, event *model.Event, userID uuid.UUID, rejection error) (bool, error) {
	if errors.Is(rejection, apperrors.ErrEventFull) {
		return !event.IsFull(), nil
	}
	exists, err := s.participantRepo.Exists(ctx, event.ID, userID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *ParticipationServiceImpl) warmSeats(ctx context.Context, event *model.Event) error {
	members, err := s.participantRepo.ListUserIDsByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	return s.seats.WarmUp(ctx, event.ID, event.MaxParticipants, members)
}

func (s *ParticipationServiceImpl) joinTx(ctx context.Context, eventID, userID uuid.UUID) (*model.Event, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 鎖定活動，同一活動的參加/退出在此排隊
	event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsFull() {
		return nil, apperrors.ErrEventFull
	}

	if _, err := s.participantRepo.Create(ctx, tx, eventID, userID); err != nil {
		return nil, err
	}

	current, err := s.eventRepo.IncrementParticipants(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	event.CurrentParticipants = current

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return event, nil
}

// compensateReservation DB 已判定額滿/重複代表快取過期，直接失效；其他錯誤歸還座位
func (s *ParticipationServiceImpl) compensateReservation(ctx context.Context, eventID, userID uuid.UUID, cause error) {
	log := s.log().With(zap.String("event_id", eventID.String()), zap.String("user_id", userID.String()), zap.NamedError("cause", cause))

	if errors.Is(cause, apperrors.ErrEventFull) || errors.Is(cause, apperrors.ErrAlreadyParticipant) {
		log.Warn("seat cache out of sync with database, invalidating")
		if err := s.seats.Invalidate(ctx, eventID); err != nil {
			log.Error("failed to invalidate seat cache", zap.Error(err))
		}
		return
	}

	if _, err := s.seats.Release(ctx, eventID, userID); err != nil {
		log.Error("failed to release reserved seat, invalidating", zap.Error(err))
		if err := s.seats.Invalidate(ctx, eventID); err != nil {
			log.Error("failed to invalidate seat cache", zap.Error(err))
		}
	}
}

func (s *ParticipationServiceImpl) Leave(ctx context.Context, session *model.Session, eventID uuid.UUID) (*model.ParticipationState, error) {
	if !session.IsAuthenticated() {
		return nil, apperrors.ErrUnauthorized
	}
	userID := session.UserID

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkActionable(session, event); err != nil {
		return nil, err
	}

	updated, err := s.leaveTx(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotParticipant) {
			s.invalidateSeats(context.Background(), eventID)
		}
		return nil, err
	}

	s.releaseSeat(context.Background(), eventID, userID)
	s.publish(ctx, eventID, userID, model.ParticipationActionLeave)

	return model.NewParticipationState(updated, userID, false), nil
}

func (s *ParticipationServiceImpl) leaveTx(ctx context.Context, eventID, userID uuid.UUID) (*model.Event, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.participantRepo.Delete(ctx, tx, eventID, userID); err != nil {
		return nil, err
	}

	current, err := s.eventRepo.DecrementParticipants(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	event.CurrentParticipants = current

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return event, nil
}

// releaseSeat 快取未預熱時不需處理，其餘不一致就失效重建
func (s *ParticipationServiceImpl) releaseSeat(ctx context.Context, eventID, userID uuid.UUID) {
	released, err := s.seats.Release(ctx, eventID, userID)
	if errors.Is(err, apperrors.ErrSeatsNotWarmed) {
		return
	}
	if err != nil || !released {
		s.log().Warn("seat release did not match database, invalidating",
			zap.String("event_id", eventID.String()), zap.String("user_id", userID.String()), zap.Error(err))
		s.invalidateSeats(ctx, eventID)
	}
}

func (s *ParticipationServiceImpl) invalidateSeats(ctx context.Context, eventID uuid.UUID) {
	if err := s.seats.Invalidate(ctx, eventID); err != nil {
		s.log().Error("failed to invalidate seat cache", zap.String("event_id", eventID.String()), zap.Error(err))
	}
}

// publish 交易已提交，MQ 失敗只記錄，由下一次校正補上
func (s *ParticipationServiceImpl) publish(ctx context.Context, eventID, userID uuid.UUID, action model.ParticipationAction) {
	change := &model.ParticipationChange{
		RequestID:  uuid.New().String(),
		EventID:    eventID,
		UserID:     userID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.changes.PublishChange(ctx, change); err != nil {
		s.log().Error("failed to publish participation change",
			zap.String("event_id", eventID.String()), zap.String("action", string(action)), zap.Error(err))
	}
}

func (s *ParticipationServiceImpl) Reconcile(ctx context.Context, eventID uuid.UUID) (*model.ReconcileResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	count, err := s.participantRepo.CountByEventID(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	result := &model.ReconcileResult{
		EventID: eventID,
		Before:  event.CurrentParticipants,
		After:   event.CurrentParticipants,
	}

	if count != event.CurrentParticipants {
		if err := s.eventRepo.SetParticipants(ctx, tx, eventID, count); err != nil {
			return nil, err
		}
		result.After = count
		result.Drifted = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log := s.log().With(zap.String("event_id", eventID.String()), zap.Int("before", result.Before), zap.Int("after", result.After))
	if result.Drifted {
		log.Warn("participant counter drift repaired")
	}
	if count > event.MaxParticipants {
		log.Warn("participants exceed capacity", zap.Int("max_participants", event.MaxParticipants))
	}

	event.CurrentParticipants = result.After
	if err := s.warmSeats(ctx, event); err != nil {
		log.Error("failed to warm seat cache after reconcile", zap.Error(err))
	}

	return result, nil
}
