package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k := Key("postgres", "primary_income_v1", "default_k1.income$1", "age,household{member_name}", 10)
	assert.Equal(t, k, Key("postgres", "primary_income_v1", "default_k1.income$1", "age,household{member_name}", 10))
	assert.Contains(t, k, keyPrefix)

	assert.NotEqual(t, k, Key("sqlite", "primary_income_v1", "default_k1.income$1", "age,household{member_name}", 10))
	assert.NotEqual(t, k, Key("postgres", "primary_income_v1", "default_k1.income$1", "age,household{member_name}", 11))
	assert.NotEqual(t, k, Key("postgres", "primary_income_v1", "default_k2.income$1", "age,household{member_name}", 10))
	// разделитель не даёт склеить соседние части
	assert.NotEqual(t, Key("a", "bc", "", "", 1), Key("ab", "c", "", "", 1))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("SELECT 1")))
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(v))

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, m.Len())

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	require.NoError(t, m.Delete(ctx, "a"))
	assert.Equal(t, 1, m.Len())
	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory(0)
	assert.ErrorIs(t, m.Set(ctx, "k", nil), context.Canceled)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(client, time.Minute), mr
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	r, mr := setupRedis(t)
	defer r.Close()

	_, err := r.Get(ctx, Key("postgres", "e", "s.t", "age", 10))
	assert.ErrorIs(t, err, ErrMiss)

	key := Key("postgres", "e", "s.t", "age", 10)
	require.NoError(t, r.Set(ctx, key, []byte("SELECT 1")))
	v, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", string(v))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err = r.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	r, mr := setupRedis(t)
	defer r.Close()

	require.NoError(t, mr.Set("session:1", "x"))
	require.NoError(t, r.Set(ctx, Key("sqlite", "e", "s.t", "age", 1), []byte("a")))
	require.NoError(t, r.Set(ctx, Key("sqlite", "e", "s.t", "age", 2), []byte("b")))

	require.NoError(t, r.Clear(ctx))
	assert.Equal(t, []string{"session:1"}, mr.Keys())
}

func TestRedis_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedis(addr, 0, time.Minute)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	c, err := New("none", time.Minute, "", 0)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New("memory", time.Minute, "", 0)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New("memcached", time.Minute, "", 0)
	assert.Error(t, err)
}
