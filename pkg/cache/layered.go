package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache puts a process-local L1 in front of a shared L2. Writes go to L2 first;
// an L1 failure never fails a call.
type LayeredCache struct {
	l1    Service
	l2    Service
	l1TTL time.Duration
}

// NewLayeredCache keeps entries in l1 for at most l1TTL.
func NewLayeredCache(l1, l2 Service, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, err := lc.l1.Get(ctx, key); err == nil {
		return v, nil
	}
	v, err := lc.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = lc.l1.Set(ctx, key, v, lc.l1TTL)
	return v, nil
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	local := lc.l1TTL
	if expiration > 0 && (local <= 0 || expiration < local) {
		local = expiration
	}
	_ = lc.l1.Set(ctx, key, value, local)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Close() error {
	return errors.Join(lc.l1.Close(), lc.l2.Close())
}
