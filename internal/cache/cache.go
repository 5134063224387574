// Package cache хранит отрендеренные SQL-запросы. Кэш только ускоряет:
// промах или сбой кэша означает повторный рендер, а не ошибку запроса.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// ErrMiss: ключа нет или срок истёк.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

const keyPrefix = "surveygraph:stmt:"

// Key: ключ запроса по диалекту, сущности, читаемым таблицам, канонической
// выборке и лимиту. relations входит в ключ, так как кэш в Redis общий
// для процессов с разными привязками (смена ключа экспорта, другой HQ).
func Key(dialect, entity, relations, selection string, limit uint64) string {
	h := sha256.New()
	for _, part := range []string{dialect, entity, relations, selection, strconv.FormatUint(limit, 10)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New: "none" -> nil, "memory" -> Memory, "redis" -> Redis.
func New(driver string, ttl time.Duration, redisAddr string, redisDB int) (Cache, error) {
	switch driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(ttl), nil
	case "redis":
		r, err := NewRedis(redisAddr, redisDB, ttl)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, errors.New("unknown cache driver: " + driver)
}
