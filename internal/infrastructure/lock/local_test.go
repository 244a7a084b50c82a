package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
)

func TestLocal_ClaveOcupadaDevuelveBusy(t *testing.T) {
	l := lock.NewLocal(30 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "p1")
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrBusy)

	release()
	release2, err := l.Acquire(ctx, "p1")
	require.NoError(t, err, "tras liberar debe poder tomarse otra vez")
	release2()
}

func TestLocal_ClavesDistintasNoSeBloquean(t *testing.T) {
	l := lock.NewLocal(30 * time.Millisecond)
	ctx := context.Background()

	r1, err := l.Acquire(ctx, "p1")
	require.NoError(t, err)
	defer r1()

	r2, err := l.Acquire(ctx, "p2")
	require.NoError(t, err)
	r2()
}

func TestLocal_ReleaseIdempotente(t *testing.T) {
	l := lock.NewLocal(30 * time.Millisecond)
	release, err := l.Acquire(context.Background(), "p1")
	require.NoError(t, err)
	release()
	release()

	r, err := l.Acquire(context.Background(), "p1")
	require.NoError(t, err)
	r()
}

func TestLocal_ContextoCancelado(t *testing.T) {
	l := lock.NewLocal(time.Second)
	r, err := l.Acquire(context.Background(), "p1")
	require.NoError(t, err)
	defer r()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "p1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_ExclusionMutua(t *testing.T) {
	l := lock.NewLocal(2 * time.Second)
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "p1")
			if err != nil {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}
