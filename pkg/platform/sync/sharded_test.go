package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutex_LockUnlock(t *testing.T) {
	var m ShardedMutex

	m.Lock("user-1\x00FACE")
	m.Unlock("user-1\x00FACE")

	// empty key maps to shard 0
	m.Lock("")
	m.Unlock("")
}

func TestShardedMutex_SameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup

	for range 100 {
		wg.Go(func() {
			_ = m.Do(Key("user-1", "FINGERPRINT"), func() error {
				counter++
				return nil
			})
		})
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestShardedMutex_DoReturnsError(t *testing.T) {
	m := NewShardedMutex()
	boom := errors.New("boom")

	err := m.Do("k", func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// the shard is released after an error
	assert.NoError(t, m.Do("k", func() error { return nil }))
}

func TestShardedMutex_DoContextGivesUpWhenShardHeld(t *testing.T) {
	m := NewShardedMutex()
	key := Key("user-1", "FACE")
	m.Lock(key)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := m.DoContext(ctx, key, func() error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)

	// a failed wait does not take the shard
	m.Unlock(key)
	assert.NoError(t, m.DoContext(context.Background(), key, func() error { return nil }))
}

func TestShardedMutex_DoContextRunsWhenFree(t *testing.T) {
	var m ShardedMutex
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := false
	assert.NoError(t, m.DoContext(ctx, "k", func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}

func TestShardDistribution(t *testing.T) {
	shards := make(map[int]bool)
	for _, user := range []string{"user-123", "user-456", "alice", "bob", "carol", "dave"} {
		shards[shardFor(Key(user, "FACE"))] = true
	}
	assert.GreaterOrEqual(t, len(shards), 3, "expected keys to distribute across multiple shards")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "u1\x00FACE", Key("u1", "FACE"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Equal(t, "", Key())
}
