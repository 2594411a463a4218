package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GoPolymarket/econgate/internal/config"
	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

const (
	usageAccepted       = "accepted"
	usageRejected       = "rejected"
	usageContractPrefix = "c:"
	usageTTL            = 48 * time.Hour
)

func usageKey(clientID string, day time.Time) string {
	return fmt.Sprintf("econgate:usage:%s:%s", clientID, day.UTC().Format(time.DateOnly))
}

// AddUsage bumps today's counters for clientID. One hash per client and day;
// keys expire after two days.
func (r *RedisClient) AddUsage(ctx context.Context, clientID, contract string, accepted bool) error {
	key := usageKey(clientID, time.Now())
	field := usageRejected
	if accepted {
		field = usageAccepted
	}

	pipe := r.Client.Pipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.HIncrBy(ctx, key, usageContractPrefix+contract, 1)
	pipe.Expire(ctx, key, usageTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisClient) GetDailyUsage(ctx context.Context, clientID string, day time.Time) (*model.DailyUsage, error) {
	fields, err := r.Client.HGetAll(ctx, usageKey(clientID, day)).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	usage := &model.DailyUsage{
		ClientID:   clientID,
		Day:        day.UTC().Format(time.DateOnly),
		ByContract: make(map[string]int64),
	}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == usageAccepted:
			usage.Accepted = n
		case field == usageRejected:
			usage.Rejected = n
		case strings.HasPrefix(field, usageContractPrefix):
			usage.ByContract[strings.TrimPrefix(field, usageContractPrefix)] = n
		}
	}
	return usage, nil
}
