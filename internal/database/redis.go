package database

import (
	"context"
	"fmt"
	"time"

	"go-gin-meetup/config"

	"github.com/redis/go-redis/v9"
)

// InitRedis 座位快取與 participation stream 共用同一個 client
func InitRedis(config *config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return rdb, nil
}
