package worker

import (
	"context"
	"errors"

	"go-gin-meetup/internal/queue"
	"go-gin-meetup/internal/service"
	apperrors "go-gin-meetup/pkg/app_errors"
	"go-gin-meetup/pkg/logger"

	"go.uber.org/zap"
)

type ReconcileWorker interface {
	// 訂閱參加/退出紀錄並校正計數
	Start(ctx context.Context) error
}

type ReconcileWorkerImpl struct {
	service service.ParticipationService
	queue   queue.ParticipationQueue
	done    chan struct{}
}

func NewReconcileWorker(service service.ParticipationService, queue queue.ParticipationQueue) *ReconcileWorkerImpl {
	return &ReconcileWorkerImpl{
		service: service,
		queue:   queue,
		done:    make(chan struct{}),
	}
}

func (w *ReconcileWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeChanges(ctx)
	if err != nil {
		close(w.done)
		return err
	}

	log := logger.WithComponent("reconcile_worker")

	go func() {
		defer close(w.done)
		for msg := range msgs {
			change := msg.Data
			result, err := w.service.Reconcile(ctx, change.EventID)

			switch {
			case err == nil:
				if result.Drifted {
					log.Info("reconciled participant counter",
						zap.String("event_id", change.EventID.String()),
						zap.String("request_id", change.RequestID),
						zap.Int("before", result.Before),
						zap.Int("after", result.After))
				}
				msg.Ack()
			case errors.Is(err, apperrors.ErrEventNotFound):
				// 活動已刪除，無需校正
				msg.Ack()
			default:
				log.Error("reconcile failed, requeue",
					zap.String("event_id", change.EventID.String()),
					zap.Int("attempt", msg.Attempt),
					zap.Error(err))
				msg.Nack(true)
			}
		}
	}()
	return nil
}

// Done 訂閱結束(ctx 取消)後關閉
func (w *ReconcileWorkerImpl) Done() <-chan struct{} {
	return w.done
}
