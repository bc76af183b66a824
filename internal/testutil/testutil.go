package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go-gin-meetup/config"
	"go-gin-meetup/internal/database"
	"go-gin-meetup/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// SetupDB 連到測試用 Postgres 並套用 migrations，連不上時 Skip。
// 設定 REQUIRE_TEST_DB=1 時改為 Fatal。
func SetupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		if os.Getenv("REQUIRE_TEST_DB") != "" {
			t.Fatalf("failed to initialize test database: %v", err)
		}
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	migrateOnce.Do(func() {
		migrateErr = database.ApplyMigrations(&cfg.Database)
	})
	if migrateErr != nil {
		t.Fatalf("failed to apply migrations: %v", migrateErr)
	}

	Truncate(t, pool)
	return pool
}

func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE event_participants, events, profiles CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// NewRedis 以 miniredis 建立測試用 client
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func CreateProfile(t *testing.T, pool *pgxpool.Pool, email string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO profiles (id, email) VALUES ($1, $2)`, id, email)
	if err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return id
}

// CreateProfiles 批次建立 n 個 profile
func CreateProfiles(t *testing.T, pool *pgxpool.Pool, prefix string, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = CreateProfile(t, pool, fmt.Sprintf("%s%d@test.com", prefix, i))
	}
	return ids
}

// CreateEvent date 以今天為基準偏移 days 天
func CreateEvent(t *testing.T, pool *pgxpool.Pool, owner uuid.UUID, title string, days, max, current int) *model.Event {
	t.Helper()
	date := time.Now().UTC().AddDate(0, 0, days).Format(model.DateLayout)

	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO events (title, description, date, time, location, max_participants, current_participants, created_by)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING id
	`, title, title+" description", date, "19:00", "Taipei", max, current, owner).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}

	return &model.Event{
		ID:                  id,
		Title:               title,
		Description:         title + " description",
		Date:                date,
		Time:                "19:00",
		Location:            "Taipei",
		MaxParticipants:     max,
		CurrentParticipants: current,
		CreatedBy:           owner,
	}
}

func AddParticipant(t *testing.T, pool *pgxpool.Pool, eventID, userID uuid.UUID) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)`, eventID, userID)
	if err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}
}
