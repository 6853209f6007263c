package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunKeepsResultsByPosition(t *testing.T) {
	boom := errors.New("boom")
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = TaskFunc(func(ctx context.Context) error {
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			if i%3 == 0 {
				return boom
			}
			return nil
		})
	}
	errs := Run(context.Background(), 4, tasks...)
	require.Len(t, errs, 10)
	for i, err := range errs {
		if i%3 == 0 {
			require.ErrorIs(t, err, boom)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var running, peak int32
	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = TaskFunc(func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
	}
	Run(context.Background(), 3, tasks...)
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	require.Greater(t, atomic.LoadInt32(&peak), int32(0))
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var executed int32
	errs := Run(ctx, 2, TaskFunc(func(ctx context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	}), TaskFunc(func(ctx context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	}))
	require.Zero(t, atomic.LoadInt32(&executed))
	for _, err := range errs {
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := NewPool(context.Background(), 1, 1)
	done := make(chan struct{})
	require.NoError(t, p.Submit(TaskFunc(func(ctx context.Context) error {
		close(done)
		return nil
	})))
	p.Close()
	<-done
	require.ErrorIs(t, p.Submit(TaskFunc(func(ctx context.Context) error { return nil })), ErrClosed)
	p.Close()
}
