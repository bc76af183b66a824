package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SeatInfo struct {
	Capacity int
	Taken    int
}

func (s SeatInfo) Available() int {
	if s.Taken >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Taken
}

type SeatInventoryManager interface {
	// 預熱：把活動容量、目前人數與參加者載入 Redis
	WarmUp(ctx context.Context, eventID uuid.UUID, capacity int, members []uuid.UUID) error
	// 獲取：活動座位資訊
	GetSeats(ctx context.Context, eventID uuid.UUID) (SeatInfo, error)
	// 預留：檢查容量與重複參加後佔用一個座位 (Lua 腳本確保原子性)
	Reserve(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (SeatInfo, error)
	// 釋放：退出或回滾時歸還座位，回傳是否真的有釋放 (Lua 腳本確保原子性)
	Release(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (bool, error)
	// 失效：刪除快取，下次使用時重新預熱
	Invalidate(ctx context.Context, eventID uuid.UUID) error
}

type RedisSeatInventoryManager struct {
	client *redis.Client
}

func NewSeatInventoryManager(client *redis.Client) SeatInventoryManager {
	return &RedisSeatInventoryManager{
		client: client,
	}
}

// 座位資訊 key
func (m *RedisSeatInventoryManager) getSeatsKey(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s:seats", eventID)
}

// 參加者集合 key
func (m *RedisSeatInventoryManager) getMembersKey(eventID uuid.UUID) string {
	return fmt.Sprintf("event:%s:members", eventID)
}

func (m *RedisSeatInventoryManager) WarmUp(ctx context.Context, eventID uuid.UUID, capacity int, members []uuid.UUID) error {
	seatsKey := m.getSeatsKey(eventID)
	membersKey := m.getMembersKey(eventID)

	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, seatsKey, membersKey)
		pipe.HSet(ctx, seatsKey, map[string]interface{}{
			"capacity": capacity,
			"taken":    len(members),
		})
		if len(members) > 0 {
			ids := make([]interface{}, 0, len(members))
			for _, id := range members {
				ids = append(ids, id.String())
			}
			pipe.SAdd(ctx, membersKey, ids...)
		}
		return nil
	})
	return err
}

func (m *RedisSeatInventoryManager) GetSeats(ctx context.Context, eventID uuid.UUID) (SeatInfo, error) {
	result, err := m.client.HGetAll(ctx, m.getSeatsKey(eventID)).Result()
	if err != nil {
		return SeatInfo{}, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return SeatInfo{}, apperrors.ErrSeatsNotWarmed
	}

	capacity, err := strconv.Atoi(result["capacity"])
	if err != nil {
		return SeatInfo{}, fmt.Errorf("invalid capacity: %v", err)
	}

	taken, err := strconv.Atoi(result["taken"])
	if err != nil {
		return SeatInfo{}, fmt.Errorf("invalid taken: %v", err)
	}

	return SeatInfo{Capacity: capacity, Taken: taken}, nil
}

var reserveScript = redis.NewScript(`
	local seats_key = KEYS[1]
	local members_key = KEYS[2]
	local user_id = ARGV[1]

	local info = redis.call('HMGET', seats_key, 'capacity', 'taken')
	local capacity = info[1]
	local taken = info[2]

	-- 尚未預熱
	if not capacity or not taken then
		return {-3, 0, 0}
	end

	capacity = tonumber(capacity)
	taken = tonumber(taken)

	-- 重複參加
	if redis.call('SISMEMBER', members_key, user_id) == 1 then
		return {-2, capacity, taken}
	end

	-- 額滿
	if taken >= capacity then
		return {-1, capacity, taken}
	end

	taken = redis.call('HINCRBY', seats_key, 'taken', 1)
	redis.call('SADD', members_key, user_id)

	return {1, capacity, taken}
`)

func (m *RedisSeatInventoryManager) Reserve(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (SeatInfo, error) {
	keys := []string{m.getSeatsKey(eventID), m.getMembersKey(eventID)}

	result, err := reserveScript.Run(ctx, m.client, keys, userID.String()).Int64Slice()
	if err != nil {
		return SeatInfo{}, err
	}
	if len(result) != 3 {
		return SeatInfo{}, errors.New("unexpected reserve result")
	}

	info := SeatInfo{Capacity: int(result[1]), Taken: int(result[2])}

	switch result[0] {
	case 1:
		return info, nil
	case -1:
		return info, apperrors.ErrEventFull
	case -2:
		return info, apperrors.ErrAlreadyParticipant
	case -3:
		return info, apperrors.ErrSeatsNotWarmed
	default:
		return info, errors.New("unexpected result")
	}
}

var releaseScript = redis.NewScript(`
	local seats_key = KEYS[1]
	local members_key = KEYS[2]
	local user_id = ARGV[1]

	if redis.call('EXISTS', seats_key) == 0 then
		return -3
	end

	if redis.call('SREM', members_key, user_id) == 0 then
		return 0
	end

	-- 最低為 0
	local taken = tonumber(redis.call('HGET', seats_key, 'taken') or '0')
	if taken > 0 then
		redis.call('HINCRBY', seats_key, 'taken', -1)
	end

	return 1
`)

func (m *RedisSeatInventoryManager) Release(ctx context.Context, eventID uuid.UUID, userID uuid.UUID) (bool, error) {
	keys := []string{m.getSeatsKey(eventID), m.getMembersKey(eventID)}

	code, err := releaseScript.Run(ctx, m.client, keys, userID.String()).Int64()
	if err != nil {
		return false, err
	}

	switch code {
	case 1:
		return true, nil
	case 0:
		return false, nil
	case -3:
		return false, apperrors.ErrSeatsNotWarmed
	default:
		return false, errors.New("unexpected result")
	}
}

func (m *RedisSeatInventoryManager) Invalidate(ctx context.Context, eventID uuid.UUID) error {
	return m.client.Del(ctx, m.getSeatsKey(eventID), m.getMembersKey(eventID)).Err()
}
