package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "987654321")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, m.Len())
}

func TestKeyedMutex_DifferentKeysIndependent(t *testing.T) {
	m := NewKeyedMutex()
	unlockA, err := m.Lock(context.Background(), "111111111")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, "222222222")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	m := NewKeyedMutex()
	unlock, err := m.Lock(context.Background(), "987654321")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "987654321")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	unlock()
	unlock()
	assert.Equal(t, 0, m.Len())
}

func TestRedisLocker_NotConfigured(t *testing.T) {
	l := NewRedisLocker(nil, time.Second)
	assert.Nil(t, l)

	_, err := l.Lock(context.Background(), "987654321")
	assert.True(t, errors.Is(err, ErrNotConfigured))
	_, _, err = l.TryLock(context.Background(), "987654321")
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.NoError(t, l.Release(context.Background(), "987654321", "token"))
}
