// Package cache keeps a barcode -> product id index in front of the catalog.
// The index only shortcuts lookups; callers always confirm the hit against the
// store, so a stale entry costs one extra query and never a wrong answer.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "pos:barcode:"

// opTimeout bounds every cache round-trip; the cache must never stall a request.
const opTimeout = 500 * time.Millisecond

type BarcodeIndex interface {
	Lookup(ctx context.Context, barcode string) (uuid.UUID, bool)
	Remember(ctx context.Context, barcode string, id uuid.UUID)
	Forget(ctx context.Context, barcode string)
}

// Noop is the index used when no cache is configured.
type Noop struct{}

func (Noop) Lookup(context.Context, string) (uuid.UUID, bool) { return uuid.Nil, false }
func (Noop) Remember(context.Context, string, uuid.UUID)      {}
func (Noop) Forget(context.Context, string)                   {}

// RedisIndex stores entries as plain string keys with a TTL. Failures are
// logged and treated as misses.
type RedisIndex struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRedisIndex(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisIndex {
	return &RedisIndex{client: client, ttl: ttl, logger: logger}
}

// Connect dials redis and verifies the connection with a PING.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   1,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (r *RedisIndex) Lookup(ctx context.Context, barcode string) (uuid.UUID, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, keyPrefix+barcode).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.WithError(err).WithField("barcode", barcode).Warn("barcode cache lookup failed")
		}
		return uuid.Nil, false
	}
	id, err := uuid.Parse(val)
	if err != nil {
		r.Forget(ctx, barcode)
		return uuid.Nil, false
	}
	return id, true
}

func (r *RedisIndex) Remember(ctx context.Context, barcode string, id uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, keyPrefix+barcode, id.String(), r.ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("barcode", barcode).Warn("barcode cache write failed")
	}
}

func (r *RedisIndex) Forget(ctx context.Context, barcode string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, keyPrefix+barcode).Err(); err != nil {
		r.logger.WithError(err).WithField("barcode", barcode).Warn("barcode cache delete failed")
	}
}
