package service_test

import (
	"context"
	"testing"
	"time"

	cacheMocks "go-gin-meetup/internal/cache/mocks"
	"go-gin-meetup/internal/model"
	queueMocks "go-gin-meetup/internal/queue/mocks"
	repoMocks "go-gin-meetup/internal/repository/mocks"
	"go-gin-meetup/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeTx 只實作 Commit/Rollback，repository 皆為 mock 不會用到其他方法
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	txs []*fakeTx
	err error
}

func (db *fakeDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if db.err != nil {
		return nil, db.err
	}
	tx := &fakeTx{}
	db.txs = append(db.txs, tx)
	return tx, nil
}

func (db *fakeDB) lastTx() *fakeTx {
	if len(db.txs) == 0 {
		return nil
	}
	return db.txs[len(db.txs)-1]
}

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newSession() *model.Session {
	return &model.Session{UserID: uuid.New(), Email: "user@test.com", ExpiresAt: fixedNow.Add(time.Hour)}
}

func newUpcomingEvent(owner uuid.UUID, max, current int) *model.Event {
	return &model.Event{
		ID:                  uuid.New(),
		Title:               "Go Meetup",
		Description:         "monthly gathering",
		Date:                "2026-07-01",
		Time:                "19:00",
		Location:            "Taipei",
		MaxParticipants:     max,
		CurrentParticipants: current,
		CreatedBy:           owner,
	}
}

// copyEvent FindByIDForUpdate 回傳獨立副本，模擬重新讀取
func copyEvent(e *model.Event) *model.Event {
	c := *e
	return &c
}

type participationDeps struct {
	db              *fakeDB
	eventRepo       *repoMocks.MockEventRepository
	participantRepo *repoMocks.MockParticipantRepository
	seats           *cacheMocks.MockSeatInventoryManager
	changes         *queueMocks.MockParticipationQueue
}

func setupParticipation(t *testing.T) (service.ParticipationService, *participationDeps) {
	deps := &participationDeps{
		db:              &fakeDB{},
		eventRepo:       repoMocks.NewMockEventRepository(t),
		participantRepo: repoMocks.NewMockParticipantRepository(t),
		seats:           cacheMocks.NewMockSeatInventoryManager(t),
		changes:         queueMocks.NewMockParticipationQueue(t),
	}
	svc := service.NewParticipationService(deps.db, deps.eventRepo, deps.participantRepo, deps.seats, deps.changes, fixedClock)
	return svc, deps
}
