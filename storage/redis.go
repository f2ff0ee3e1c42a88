package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig описывает подключение к Redis для хранения множества идентификаторов.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisSeenStore хранит идентификаторы каждого источника в отдельном множестве Redis.
type RedisSeenStore struct {
	client    *redis.Client
	keyPrefix string
	log       *slog.Logger
}

// NewRedisSeenStore подключается к Redis и проверяет соединение.
func NewRedisSeenStore(cfg RedisConfig, log *slog.Logger) (*RedisSeenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	log.Info("Initializing Redis seen-id storage",
		slog.String("component", "storage"),
		slog.String("addr", cfg.Addr),
	)
	return &RedisSeenStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		log:       log.With(slog.String("component", "storage")),
	}, nil
}

func (s *RedisSeenStore) key(sourceKey string) string {
	return s.keyPrefix + ":" + sourceKey
}

func (s *RedisSeenStore) LoadSeenIDs(ctx context.Context, sourceKey string) (map[string]struct{}, error) {
	const op = "storage.redis.LoadSeenIDs"
	members, err := s.client.SMembers(ctx, s.key(sourceKey)).Result()
	if err != nil {
		s.log.Error("SMEMBERS failed", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	seen := make(map[string]struct{}, len(members))
	for _, id := range members {
		seen[id] = struct{}{}
	}
	return seen, nil
}

func (s *RedisSeenStore) PersistSeenIDs(ctx context.Context, sourceKey string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const op = "storage.redis.PersistSeenIDs"
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, s.key(sourceKey), members...).Err(); err != nil {
		s.log.Error("SADD failed", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisSeenStore) Close() {
	if err := s.client.Close(); err != nil {
		s.log.Error("Failed to close redis client", slog.Any("error", err))
	}
}
