package domain

import "context"

// Ключи кеша — единое место, чтобы не расползались по коду.
func CacheKeyCollection(name string) string    { return "col:" + name }
func CacheKeyLoginAttempts(user string) string { return "login_fail:" + user }

// Простой k/v интерфейс. Реализация — Redis; кеш опционален,
// при пустом REDIS_ADDR сервис работает без него.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	// Для счётчика неудачных логинов (rate limit)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttlSeconds int) error
	Ping(context.Context) error
	Close()
}
