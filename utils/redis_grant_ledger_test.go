package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKeyParser(t *testing.T) {
	p := &RedisKeyParser{delimiter: "__"}

	assert.True(t, p.ValidateId("valid-grant-id"))
	assert.False(t, p.ValidateId("invalid__grant"))
	assert.False(t, p.ValidateId(""))

	k, err := p.EncodeGrantKey("valid-grant-id")
	assert.Nil(t, err)
	assert.Equal(t, "reset_grant__valid-grant-id", k)

	_, err = p.EncodeGrantKey("invalid__grant")
	assert.NotNil(t, err)

	id, err := p.decodeGrantKey(k)
	assert.Nil(t, err)
	assert.Equal(t, "valid-grant-id", id)

	_, err = p.decodeGrantKey("other__valid-grant-id")
	assert.NotNil(t, err)
}

func TestMemoryGrantLedger(t *testing.T) {
	l := NewMemoryGrantLedger()
	ctx := context.Background()

	first, err := l.Consume(ctx, "g1", time.Minute)
	require.Nil(t, err)
	assert.True(t, first)

	first, err = l.Consume(ctx, "g1", time.Minute)
	require.Nil(t, err)
	assert.False(t, first)

	first, err = l.Consume(ctx, "g2", time.Minute)
	require.Nil(t, err)
	assert.True(t, first)

	require.Nil(t, l.Release(ctx, "g1"))
	first, err = l.Consume(ctx, "g1", time.Minute)
	require.Nil(t, err)
	assert.True(t, first)
}

func TestMemoryGrantLedgerForgetsExpired(t *testing.T) {
	l := NewMemoryGrantLedger()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := l.Consume(ctx, "g1", time.Minute)
	require.Nil(t, err)

	now = now.Add(2 * time.Minute)
	_, err = l.Consume(ctx, "g2", time.Minute)
	require.Nil(t, err)
	assert.NotContains(t, l.consumed, "g1")
}

func TestRedisGrantLedger(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping redis backed test")
	}
	ctx := context.Background()
	l, err := GetRedisGrantLedger(ctx)
	require.Nil(t, err)
	defer l.Close()

	grantId := uuid.New().String()
	first, err := l.Consume(ctx, grantId, time.Minute)
	require.Nil(t, err)
	assert.True(t, first)

	first, err = l.Consume(ctx, grantId, time.Minute)
	require.Nil(t, err)
	assert.False(t, first)

	require.Nil(t, l.Release(ctx, grantId))
	first, err = l.Consume(ctx, grantId, time.Minute)
	require.Nil(t, err)
	assert.True(t, first)
}

// decodeGrantKey is the inverse of EncodeGrantKey.
func (r RedisKeyParser) decodeGrantKey(key string) (string, error) {
	splits := strings.Split(key, r.delimiter)
	if len(splits) != 2 || splits[0] != grantKeyPrefix {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return splits[1], nil
}
