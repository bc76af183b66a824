package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-gin-meetup/internal/model"
	"go-gin-meetup/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey         = "participation:stream"
	ConsumerGroupName = "participation-reconcilers"
	messageField      = "change"

	batchSize = 10
)

type RedisStreamQueueConfig struct {
	// PEL 中閒置超過此時間的紀錄會被重新領取
	ClaimMinIdleTime time.Duration
	// 投遞次數超過上限就丟棄
	MaxRetryCount      int
	ReadGroupBlockTime time.Duration
	// stream 概略長度上限，舊紀錄由 XADD MAXLEN ~ 修剪
	MaxLen int64
}

func (c *RedisStreamQueueConfig) withDefaults() RedisStreamQueueConfig {
	cfg := RedisStreamQueueConfig{
		ClaimMinIdleTime:   5 * time.Second,
		MaxRetryCount:      5,
		ReadGroupBlockTime: 2 * time.Second,
		MaxLen:             100000,
	}
	if c == nil {
		return cfg
	}
	if c.ClaimMinIdleTime > 0 {
		cfg.ClaimMinIdleTime = c.ClaimMinIdleTime
	}
	if c.MaxRetryCount > 0 {
		cfg.MaxRetryCount = c.MaxRetryCount
	}
	if c.ReadGroupBlockTime > 0 {
		cfg.ReadGroupBlockTime = c.ReadGroupBlockTime
	}
	if c.MaxLen > 0 {
		cfg.MaxLen = c.MaxLen
	}
	return cfg
}

// RedisStreamParticipationQueue 多個實例共用同一個 consumer group，每筆紀錄只交給其中一個 worker
type RedisStreamParticipationQueue struct {
	client   *redis.Client
	consumer string
	cfg      RedisStreamQueueConfig
	log      *zap.Logger
}

// NewRedisStreamParticipationQueue consumerID 為空時產生隨機名稱；config 可為 nil
func NewRedisStreamParticipationQueue(client *redis.Client, consumerID string, config *RedisStreamQueueConfig) (ParticipationQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	q := &RedisStreamParticipationQueue{
		client:   client,
		consumer: "reconciler:" + consumerID,
		cfg:      config.withDefaults(),
		log:      logger.WithComponent("participation_stream").With(zap.String("consumer", consumerID)),
	}

	err := client.XGroupCreateMkStream(context.Background(), StreamKey, ConsumerGroupName, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group %s: %w", ConsumerGroupName, err)
	}
	return q, nil
}

func (q *RedisStreamParticipationQueue) PublishChange(ctx context.Context, change *model.ParticipationChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode participation change: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: q.cfg.MaxLen,
		Approx: true,
		Values: map[string]interface{}{messageField: string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("append to %s: %w", StreamKey, err)
	}
	return nil
}

// SubscribeChanges 同時消費新紀錄與逾時未 ack 的紀錄，兩者都結束後關閉 channel
func (q *RedisStreamParticipationQueue) SubscribeChanges(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		q.consumeNew(ctx, out)
	}()
	go func() {
		defer wg.Done()
		q.reclaimIdle(ctx, out)
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

func (q *RedisStreamParticipationQueue) consumeNew(ctx context.Context, out chan<- Delivery) {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    ConsumerGroupName,
			Consumer: q.consumer,
			Streams:  []string{StreamKey, ">"},
			Count:    batchSize,
			Block:    q.cfg.ReadGroupBlockTime,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.log.Error("read participation stream failed", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		for _, stream := range streams {
			if !q.dispatch(ctx, out, stream.Messages, false) {
				return
			}
		}
	}
}

// reclaimIdle worker 當掉或 Nack(true) 的紀錄留在 PEL，閒置夠久後由這裡重新投遞
func (q *RedisStreamParticipationQueue) reclaimIdle(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()

	cursor := "0-0"
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		msgs, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   StreamKey,
			Group:    ConsumerGroupName,
			Consumer: q.consumer,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Start:    cursor,
			Count:    batchSize,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return
			}
			q.log.Error("reclaim idle participation changes failed", zap.Error(err))
			continue
		}

		cursor = next
		if cursor == "" {
			cursor = "0-0"
		}
		if !q.dispatch(ctx, out, msgs, true) {
			return
		}
	}
}

// dispatch 回傳 false 表示 ctx 已取消
func (q *RedisStreamParticipationQueue) dispatch(ctx context.Context, out chan<- Delivery, msgs []redis.XMessage, reclaimed bool) bool {
	for _, msg := range msgs {
		attempt := 1
		if reclaimed {
			attempt = q.attemptOf(ctx, msg.ID)
			if attempt > q.cfg.MaxRetryCount {
				q.log.Warn("discard participation change after too many attempts",
					zap.String("message_id", msg.ID), zap.Int("attempt", attempt))
				q.settle(ctx, msg.ID)
				continue
			}
		}

		change, err := decodeChange(msg)
		if err != nil {
			q.log.Warn("discard malformed participation change", zap.String("message_id", msg.ID), zap.Error(err))
			q.settle(ctx, msg.ID)
			continue
		}

		select {
		case out <- q.deliveryOf(ctx, msg.ID, change, attempt):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// attemptOf 查不到投遞次數時當作第二次
func (q *RedisStreamParticipationQueue) attemptOf(ctx context.Context, messageID string) int {
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: StreamKey,
		Group:  ConsumerGroupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		if err != nil && !errors.Is(err, redis.Nil) {
			q.log.Warn("lookup delivery count failed", zap.String("message_id", messageID), zap.Error(err))
		}
		return 2
	}
	return int(pending[0].RetryCount)
}

func decodeChange(msg redis.XMessage) (*model.ParticipationChange, error) {
	raw, ok := msg.Values[messageField].(string)
	if !ok {
		return nil, fmt.Errorf("missing %q field", messageField)
	}
	var change model.ParticipationChange
	if err := json.Unmarshal([]byte(raw), &change); err != nil {
		return nil, err
	}
	return &change, nil
}

func (q *RedisStreamParticipationQueue) settle(ctx context.Context, messageID string) {
	if err := q.client.XAck(ctx, StreamKey, ConsumerGroupName, messageID).Err(); err != nil {
		q.log.Error("ack participation change failed", zap.String("message_id", messageID), zap.Error(err))
	}
}

func (q *RedisStreamParticipationQueue) deliveryOf(ctx context.Context, messageID string, change *model.ParticipationChange, attempt int) Delivery {
	// 關機時 worker 仍可 ack 已處理完的紀錄
	ackCtx := context.WithoutCancel(ctx)
	return Delivery{
		Data:    change,
		Attempt: attempt,
		Ack: func() {
			q.settle(ackCtx, messageID)
		},
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，等 reclaimIdle 領回
				return
			}
			q.settle(ackCtx, messageID)
		},
	}
}
