package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunFetchesImmediatelyAndStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	p := New("chat", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 },
		time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}

	stopped := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestRunNeverOverlapsFetches(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	p := New("slow", 5*time.Millisecond, func(ctx context.Context) error {
		n := inFlight.Add(1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		time.Sleep(20 * time.Millisecond) // slower than the interval
		inFlight.Add(-1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestNewAppliesDefaults(t *testing.T) {
	p := New("x", 0, nil)
	assert.Equal(t, 5*time.Second, p.Interval)
	assert.Equal(t, 10*time.Second, p.Timeout)
}
