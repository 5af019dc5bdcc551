package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salesdocs/pkg/logger"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshStatuses(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

type countingCleaner struct{ calls atomic.Int32 }

func (c *countingCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestMaintenance_RunsImmediatelyAndOnTick(t *testing.T) {
	w, i := &countingRefresher{}, &countingCleaner{}
	m := NewMaintenance(w, i, 10*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return w.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.GreaterOrEqual(t, i.calls.Load(), int32(2))
}

func TestMaintenance_RefreshErrorDoesNotSkipCleanup(t *testing.T) {
	w, i := &countingRefresher{err: errors.New("db down")}, &countingCleaner{}
	m := NewMaintenance(w, i, time.Hour, logger.Nop())

	m.runOnce(context.Background())

	assert.Equal(t, int32(1), w.calls.Load())
	assert.Equal(t, int32(1), i.calls.Load())
}
