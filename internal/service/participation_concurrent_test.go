package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-gin-meetup/internal/cache"
	"go-gin-meetup/internal/model"
	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/repository"
	"go-gin-meetup/internal/service"
	"go-gin-meetup/internal/testutil"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type integrationEnv struct {
	svc             service.ParticipationService
	eventRepo       repository.EventRepository
	participantRepo repository.ParticipantRepository
	seats           cache.SeatInventoryManager
}

func setupIntegration(t *testing.T) (*integrationEnv, func(prefix string, n int) []uuid.UUID, func(owner uuid.UUID, max int) *model.Event) {
	pool := testutil.SetupDB(t)
	rdb := testutil.NewRedis(t)

	env := &integrationEnv{
		eventRepo:       repository.NewEventRepository(pool),
		participantRepo: repository.NewParticipantRepository(pool),
		seats:           cache.NewSeatInventoryManager(rdb),
	}
	env.svc = service.NewParticipationService(pool, env.eventRepo, env.participantRepo, env.seats,
		queue.NewMemoryParticipationQueue(nil), service.SystemClock(time.UTC))

	profiles := func(prefix string, n int) []uuid.UUID {
		return testutil.CreateProfiles(t, pool, prefix, n)
	}
	event := func(owner uuid.UUID, max int) *model.Event {
		return testutil.CreateEvent(t, pool, owner, "Popular Meetup", 2, max, 0)
	}
	return env, profiles, event
}

// 50 位使用者同時搶 10 個名額
func TestConcurrentJoin_NoOverbooking(t *testing.T) {
	env, profiles, newEvent := setupIntegration(t)
	ctx := context.Background()

	const users, seats = 50, 10
	owner := profiles("owner", 1)[0]
	userIDs := profiles("user", users)
	event := newEvent(owner, seats)

	var wg sync.WaitGroup
	var success, full, other atomic.Int32

	for _, id := range userIDs {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			_, err := env.svc.Join(ctx, &model.Session{UserID: userID}, event.ID)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, apperrors.ErrEventFull):
				full.Add(1)
			default:
				other.Add(1)
				t.Logf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	t.Logf("%d users competing for %d seats - Success: %d, Full: %d", users, seats, success.Load(), full.Load())

	assert.Equal(t, int32(seats), success.Load())
	assert.Equal(t, int32(users-seats), full.Load())
	assert.Zero(t, other.Load())

	stored, err := env.eventRepo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, seats, stored.CurrentParticipants)

	ids, err := env.participantRepo.ListUserIDsByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, ids, seats)
}

// 同一使用者連點：只會成功一次
func TestConcurrentJoin_SameUser(t *testing.T) {
	env, profiles, newEvent := setupIntegration(t)
	ctx := context.Background()

	owner := profiles("owner", 1)[0]
	user := profiles("user", 1)[0]
	event := newEvent(owner, 5)

	var wg sync.WaitGroup
	var success atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.svc.Join(ctx, &model.Session{UserID: user}, event.ID); err == nil {
				success.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	stored, err := env.eventRepo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentParticipants)
}

func TestJoinLeaveRoundTrip(t *testing.T) {
	env, profiles, newEvent := setupIntegration(t)
	ctx := context.Background()

	owner := profiles("owner", 1)[0]
	user := profiles("user", 1)[0]
	event := newEvent(owner, 1)
	session := &model.Session{UserID: user}

	state, err := env.svc.Join(ctx, session, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentParticipants)

	state, err = env.svc.Leave(ctx, session, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentParticipants)
	assert.Equal(t, 1, state.AvailableSeats)

	_, err = env.svc.Leave(ctx, session, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	info, err := env.seats.GetSeats(ctx, event.ID)
	if err == nil {
		assert.Equal(t, 0, info.Taken)
	} else {
		assert.ErrorIs(t, err, apperrors.ErrSeatsNotWarmed)
	}

	result, err := env.svc.Reconcile(ctx, event.ID)
	require.NoError(t, err)
	assert.False(t, result.Drifted)
}
