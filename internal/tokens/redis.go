package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const usedKey = "escritorio:tokens:usados"

var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local n = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if used + n > limit then
  return -1
end
return redis.call('INCRBY', KEYS[1], n)
`)

var adjustScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local nextv = used + tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if nextv > limit then nextv = limit end
if nextv < 0 then nextv = 0 end
redis.call('SET', KEYS[1], nextv)
return nextv - used
`)

// RedisClient é o subconjunto do go-redis usado pelo contador.
type RedisClient interface {
	redis.Scripter
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore compartilha o contador entre instâncias; as alterações rodam
// em scripts Lua para não haver janela entre leitura e escrita.
type RedisStore struct {
	client RedisClient
}

// NewRedisStore cria o contador sobre um cliente Redis.
func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Used(ctx context.Context) (int, error) {
	used, err := s.client.Get(ctx, usedKey).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return used, err
}

func (s *RedisStore) Reserve(ctx context.Context, n, limit int) (int, error) {
	used, err := reserveScript.Run(ctx, s.client, []string{usedKey}, n, limit).Int()
	if err != nil {
		return 0, err
	}
	if used < 0 {
		return 0, ErrSaldoInsuficiente
	}
	return used, nil
}

func (s *RedisStore) Adjust(ctx context.Context, delta, limit int) (int, error) {
	return adjustScript.Run(ctx, s.client, []string{usedKey}, delta, limit).Int()
}

func (s *RedisStore) Reset(ctx context.Context) error {
	return s.client.Set(ctx, usedKey, 0, 0).Err()
}

// Seed grava o uso inicial apenas se a chave ainda não existir.
func (s *RedisStore) Seed(ctx context.Context, used int) error {
	if _, err := s.client.Get(ctx, usedKey).Result(); err == nil || !errors.Is(err, redis.Nil) {
		return err
	}
	return s.client.Set(ctx, usedKey, used, 0).Err()
}
