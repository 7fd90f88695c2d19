package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	// Redis only has string type, there is no boolean or int, so we use "1" to represent true
	RedisTrue = "1"

	grantKeyPrefix = "reset_grant"
)

// GrantLedger remembers which single use grants were already consumed.
type GrantLedger interface {
	// Consume marks grantId as used and returns true iff this call is the
	// first one to do so. ttl bounds how long the record is kept, it should be
	// at least the remaining lifetime of the grant.
	Consume(ctx context.Context, grantId string, ttl time.Duration) (bool, error)
	// Release forgets a consumed grant so it can be consumed again, used when
	// the work guarded by the grant failed.
	Release(ctx context.Context, grantId string) error
}

type RedisGrantLedger struct {
	inner     *redis.Client
	keyParser RedisKeyParser
}

var _ GrantLedger = &RedisGrantLedger{}

func GetRedisGrantLedger(ctx context.Context) (*RedisGrantLedger, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fail to ping redis")
	}
	return &RedisGrantLedger{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeGrantKey(grantId string) (string, error) {
	if !r.ValidateId(grantId) {
		return "", fmt.Errorf("invalid grant id: %s", grantId)
	}
	return fmt.Sprintf("%s%s%s", grantKeyPrefix, r.delimiter, grantId), nil
}

func (r *RedisGrantLedger) Consume(ctx context.Context, grantId string, ttl time.Duration) (bool, error) {
	key, err := r.keyParser.EncodeGrantKey(grantId)
	if err != nil {
		return false, err
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	first, err := r.inner.SetNX(ctx, key, RedisTrue, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "fail to consume grant")
	}
	return first, nil
}

func (r *RedisGrantLedger) Release(ctx context.Context, grantId string) error {
	key, err := r.keyParser.EncodeGrantKey(grantId)
	if err != nil {
		return err
	}
	if err := r.inner.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, "fail to release grant")
	}
	return nil
}

func (r *RedisGrantLedger) Close() error {
	return r.inner.Close()
}

// MemoryGrantLedger is the in process GrantLedger used by tests and the
// -memory development mode.
type MemoryGrantLedger struct {
	m        sync.Mutex
	consumed map[string]time.Time
	now      func() time.Time
}

var _ GrantLedger = &MemoryGrantLedger{}

func NewMemoryGrantLedger() *MemoryGrantLedger {
	return &MemoryGrantLedger{
		consumed: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (l *MemoryGrantLedger) Consume(ctx context.Context, grantId string, ttl time.Duration) (bool, error) {
	l.m.Lock()
	defer l.m.Unlock()

	now := l.now()
	// drop expired records so the map doesn't grow forever
	for id, expireAt := range l.consumed {
		if now.After(expireAt) {
			delete(l.consumed, id)
		}
	}
	if _, ok := l.consumed[grantId]; ok {
		return false, nil
	}
	l.consumed[grantId] = now.Add(ttl)
	return true, nil
}

func (l *MemoryGrantLedger) Release(ctx context.Context, grantId string) error {
	l.m.Lock()
	defer l.m.Unlock()
	delete(l.consumed, grantId)
	return nil
}
