package queue

import (
	"context"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/pkg/logger"

	"go.uber.org/zap"
)

// Delivery 一筆待校正的參加/退出紀錄
type Delivery struct {
	Data *model.ParticipationChange
	// Attempt 第幾次投遞，從 1 開始
	Attempt int
	Ack     func()
	Nack    func(requeue bool)
}

type ParticipationQueue interface {
	// 發送參加/退出紀錄到隊列
	PublishChange(ctx context.Context, change *model.ParticipationChange) error
	// 訂閱隊列
	SubscribeChanges(ctx context.Context) (<-chan Delivery, error)
}

type pendingChange struct {
	change  *model.ParticipationChange
	attempt int
}

type MemoryQueueConfig struct {
	BufferSize int
	// 投遞次數超過上限就丟棄
	MaxRetryCount int
	// Nack(true) 後延遲 RetryBackoff * attempt 才重新投遞
	RetryBackoff time.Duration
}

func (c *MemoryQueueConfig) withDefaults() MemoryQueueConfig {
	cfg := MemoryQueueConfig{
		BufferSize:    1000,
		MaxRetryCount: 5,
		RetryBackoff:  500 * time.Millisecond,
	}
	if c == nil {
		return cfg
	}
	if c.BufferSize > 0 {
		cfg.BufferSize = c.BufferSize
	}
	if c.MaxRetryCount > 0 {
		cfg.MaxRetryCount = c.MaxRetryCount
	}
	if c.RetryBackoff > 0 {
		cfg.RetryBackoff = c.RetryBackoff
	}
	return cfg
}

// MemoryParticipationQueue 單機版，行程重啟後未處理的紀錄會遺失
type MemoryParticipationQueue struct {
	ch  chan pendingChange
	cfg MemoryQueueConfig
}

// NewMemoryParticipationQueue config 可為 nil
func NewMemoryParticipationQueue(config *MemoryQueueConfig) ParticipationQueue {
	cfg := config.withDefaults()
	return &MemoryParticipationQueue{
		ch:  make(chan pendingChange, cfg.BufferSize),
		cfg: cfg,
	}
}

func (q *MemoryParticipationQueue) PublishChange(ctx context.Context, change *model.ParticipationChange) error {
	select {
	case q.ch <- pendingChange{change: change, attempt: 1}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryParticipationQueue) SubscribeChanges(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			var p pendingChange
			select {
			case <-ctx.Done():
				return
			case p = <-q.ch:
			}

			select {
			case out <- q.deliveryOf(p):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (q *MemoryParticipationQueue) deliveryOf(p pendingChange) Delivery {
	return Delivery{
		Data:    p.change,
		Attempt: p.attempt,
		Ack:     func() {},
		Nack: func(requeue bool) {
			if requeue {
				q.retry(p)
			}
		},
	}
}

func (q *MemoryParticipationQueue) retry(p pendingChange) {
	log := logger.WithComponent("participation_queue").With(
		zap.String("event_id", p.change.EventID.String()), zap.Int("attempt", p.attempt))

	if p.attempt >= q.cfg.MaxRetryCount {
		log.Warn("discard participation change after too many attempts")
		return
	}

	next := pendingChange{change: p.change, attempt: p.attempt + 1}
	time.AfterFunc(q.cfg.RetryBackoff*time.Duration(p.attempt), func() {
		// buffer 滿時丟棄，交給下一次同活動的變更再校正
		select {
		case q.ch <- next:
		default:
			log.Warn("participation queue full, drop retry")
		}
	})
}
