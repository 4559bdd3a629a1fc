package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMemoryFeedExpiresToasts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	feed := NewMemoryFeed(5 * time.Second)
	feed.now = clock.now
	ctx := context.Background()

	require.NoError(t, feed.Notify(ctx, Sucesso, "Tarefa criada com sucesso!"))
	clock.t = clock.t.Add(3 * time.Second)
	require.NoError(t, feed.Notify(ctx, Erro, "Erro ao excluir tarefa"))

	active, err := feed.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Tarefa criada com sucesso!", active[0].Mensagem)

	clock.t = clock.t.Add(3 * time.Second)
	active, err = feed.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, Erro, active[0].Tipo)
}

type stubRedis struct {
	list    []string
	expires time.Duration
}

func (s *stubRedis) RPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		switch val := v.(type) {
		case []byte:
			s.list = append(s.list, string(val))
		default:
			s.list = append(s.list, fmt.Sprint(val))
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(s.list)))
	return cmd
}

func (s *stubRedis) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	if start < 0 && int64(len(s.list)) > -start {
		s.list = s.list[int64(len(s.list))+start:]
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	s.expires = expiration
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (s *stubRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	cmd.SetVal(append([]string(nil), s.list...))
	return cmd
}

func TestRedisFeed(t *testing.T) {
	client := &stubRedis{}
	clock := &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	feed := NewRedisFeed(client, 5*time.Second)
	feed.now = clock.now
	ctx := context.Background()

	require.NoError(t, feed.Notify(ctx, Sucesso, "Usuário criado com sucesso!"))
	client.list = append(client.list, "{corrompido")

	active, err := feed.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Usuário criado com sucesso!", active[0].Mensagem)
	assert.Equal(t, 5*time.Second, client.expires)

	clock.t = clock.t.Add(6 * time.Second)
	active, err = feed.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRedisFeedTrimsHistory(t *testing.T) {
	client := &stubRedis{}
	feed := NewRedisFeed(client, time.Minute)
	for i := 0; i < maxHistory+10; i++ {
		require.NoError(t, feed.Notify(context.Background(), Aviso, fmt.Sprintf("aviso %d", i)))
	}
	assert.Len(t, client.list, maxHistory)
}
