package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisKey   = "escritorio:toasts"
	maxHistory = 50
)

// RedisClient é o subconjunto do go-redis usado pelo feed.
type RedisClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisFeed compartilha toasts entre instâncias da API.
type RedisFeed struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisFeed cria o feed sobre um cliente Redis.
func NewRedisFeed(client RedisClient, ttl time.Duration) *RedisFeed {
	return &RedisFeed{client: client, ttl: ttl, now: time.Now}
}

// Notify publica o toast no fim da lista e renova a expiração da chave.
func (f *RedisFeed) Notify(ctx context.Context, tipo, mensagem string) error {
	toast := newToast(tipo, mensagem, f.now(), f.ttl)
	payload, err := json.Marshal(toast)
	if err != nil {
		return err
	}
	if err := f.client.RPush(ctx, redisKey, payload).Err(); err != nil {
		return err
	}
	if err := f.client.LTrim(ctx, redisKey, -maxHistory, -1).Err(); err != nil {
		return err
	}
	return f.client.Expire(ctx, redisKey, f.ttl).Err()
}

// Active lê a lista e descarta os toasts expirados.
func (f *RedisFeed) Active(ctx context.Context) ([]Toast, error) {
	raw, err := f.client.LRange(ctx, redisKey, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []Toast{}, nil
		}
		return nil, err
	}

	toasts := make([]Toast, 0, len(raw))
	for _, item := range raw {
		var t Toast
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			log.Warn().Err(err).Msg("notify: toast ilegível descartado")
			continue
		}
		toasts = append(toasts, t)
	}
	return visible(toasts, f.now()), nil
}
