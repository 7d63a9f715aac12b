// cache содержит кэш ролей пользователей для админского гейта.
// Роль читается на каждом запросе к привилегированным маршрутам;
// кэш снимает эту нагрузку с PostgreSQL. Кэш опционален: при пустом
// REDIS_URL сервис работает напрямую с хранилищем.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RoleCache — минимальный контракт кэша ролей.
type RoleCache interface {
	// Get возвращает роль и признак её наличия в кэше.
	Get(ctx context.Context, userID uuid.UUID) (string, bool, error)
	// Set сохраняет роль с TTL.
	Set(ctx context.Context, userID uuid.UUID, role string, ttl time.Duration) error
	// Invalidate удаляет запись о роли пользователя.
	Invalidate(ctx context.Context, userID uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "auth:role:".
func NewRedisCache(redisURL, prefix string) (RoleCache, error) {
	if prefix == "" {
		prefix = "auth:role:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

func (c *redisCache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	role, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, err
	}

	return role, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID uuid.UUID, role string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(userID), role, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
