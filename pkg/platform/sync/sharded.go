// Package sync provides keyed locking for read-modify-write sequences that
// span more than one store call.
package sync

import (
	"context"
	"hash/fnv"
	"sync"

	"golang.org/x/sync/semaphore"
)

const shardCount = 64

// ShardedMutex serializes work per key. Keys are hashed onto a fixed set of
// single-slot semaphores, so two different keys may occasionally share a
// shard; waiting for a shard honours context cancellation. The zero value is
// ready to use.
type ShardedMutex struct {
	once   sync.Once
	shards [shardCount]*semaphore.Weighted
}

func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

func (m *ShardedMutex) shard(key string) *semaphore.Weighted {
	m.once.Do(func() {
		for i := range m.shards {
			m.shards[i] = semaphore.NewWeighted(1)
		}
	})
	return m.shards[shardFor(key)]
}

// Lock acquires the shard for key, waiting as long as it takes.
func (m *ShardedMutex) Lock(key string) {
	_ = m.shard(key).Acquire(context.Background(), 1) //nolint:errcheck // background never cancels
}

// LockContext acquires the shard for key or returns ctx.Err() once ctx is done.
func (m *ShardedMutex) LockContext(ctx context.Context, key string) error {
	return m.shard(key).Acquire(ctx, 1)
}

// Unlock releases the shard for key.
func (m *ShardedMutex) Unlock(key string) {
	m.shard(key).Release(1)
}

// Do runs fn while holding the shard for key and returns its error.
func (m *ShardedMutex) Do(key string, fn func() error) error {
	return m.DoContext(context.Background(), key, fn)
}

// DoContext is Do with a bounded wait: if ctx ends before the shard is free,
// fn is not run and ctx.Err() is returned.
func (m *ShardedMutex) DoContext(ctx context.Context, key string, fn func() error) error {
	if err := m.LockContext(ctx, key); err != nil {
		return err
	}
	defer m.Unlock(key)
	return fn()
}

// Key joins parts into a lock key. Parts are NUL separated so ("ab", "c")
// and ("a", "bc") differ.
func Key(parts ...string) string {
	n := len(parts)
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, 0)
		}
		b = append(b, p...)
	}
	return string(b)
}

func shardFor(key string) int {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key)) //nolint:errcheck // fnv never fails
	return int(h.Sum32() % shardCount)
}
