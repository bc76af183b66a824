package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-gin-meetup/config"
	"go-gin-meetup/internal/auth"
	"go-gin-meetup/internal/cache"
	"go-gin-meetup/internal/database"
	"go-gin-meetup/internal/handler"
	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/repository"
	"go-gin-meetup/internal/service"
	"go-gin-meetup/internal/worker"
	"go-gin-meetup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	rollback := flag.Bool("migrate-down", false, "roll back the last migration and exit")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		logger.L.Warn("invalid LOG_LEVEL, keeping default", zap.String("level", cfg.Log.Level))
	}
	defer logger.L.Sync()

	log := logger.WithComponent("server")

	if *rollback {
		if err := database.RollbackLastMigration(&cfg.Database); err != nil {
			log.Fatal("Failed to roll back migration", zap.Error(err))
		}
		log.Info("Rolled back last migration")
		return
	}

	if cfg.Database.MigrateOnStart {
		if err := database.ApplyMigrations(&cfg.Database); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	location, err := time.LoadLocation(cfg.Server.Location)
	if err != nil {
		log.Fatal("Invalid EVENT_TIMEZONE", zap.String("location", cfg.Server.Location), zap.Error(err))
	}
	clock := service.SystemClock(location)

	verifier, err := auth.NewVerifier(&cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize auth", zap.Error(err))
	}

	changes, err := newParticipationQueue(&cfg.Queue, rdb)
	if err != nil {
		log.Fatal("Failed to initialize queue", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(pool)
	participantRepo := repository.NewParticipantRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	seats := cache.NewSeatInventoryManager(rdb)

	participationService := service.NewParticipationService(pool, eventRepo, participantRepo, seats, changes, clock)
	eventService := service.NewEventService(eventRepo, participantRepo, profileRepo, seats, clock)
	profileService := service.NewProfileService(profileRepo)
	dashboardService := service.NewDashboardService(eventRepo, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := worker.NewReconcileWorker(participationService, changes)
	if err := reconciler.Start(ctx); err != nil {
		log.Fatal("Failed to start reconcile worker", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Handlers{
		Event:         handler.NewEventHandler(eventService),
		Participation: handler.NewParticipationHandler(participationService),
		Profile:       handler.NewProfileHandler(profileService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	}, handler.NewAuthMiddleware(verifier))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown", zap.Error(err))
	}

	select {
	case <-reconciler.Done():
	case <-shutdownCtx.Done():
		log.Warn("Reconcile worker did not stop in time")
	}
}

// newParticipationQueue QUEUE_DRIVER=memory 時不需要 Redis Stream，單機開發用
func newParticipationQueue(cfg *config.QueueConfig, rdb *redis.Client) (queue.ParticipationQueue, error) {
	if cfg.Driver == "memory" {
		return queue.NewMemoryParticipationQueue(&queue.MemoryQueueConfig{
			BufferSize:    cfg.BufferSize,
			MaxRetryCount: cfg.MaxRetryCount,
		}), nil
	}
	return queue.NewRedisStreamParticipationQueue(rdb, cfg.ConsumerID, &queue.RedisStreamQueueConfig{
		ClaimMinIdleTime: cfg.ClaimMinIdleTime,
		MaxRetryCount:    cfg.MaxRetryCount,
		MaxLen:           cfg.StreamMaxLen,
	})
}
