package persist_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/domunify/pkg/persist"
)

func TestDebouncer(t *testing.T) {
	t.Run("should coalesce a burst into one call", func(t *testing.T) {
		sched := &persist.ManualScheduler{}
		var calls int
		d := persist.NewDebouncer(sched, 300*time.Millisecond, func() { calls++ })

		d.Trigger()
		sched.Advance(200 * time.Millisecond)
		d.Trigger()
		sched.Advance(200 * time.Millisecond)
		d.Trigger()
		assert.Equal(t, 0, calls)
		assert.True(t, d.Pending())
		assert.Equal(t, 1, sched.Pending())

		sched.Advance(300 * time.Millisecond)
		assert.Equal(t, 1, calls)
		assert.False(t, d.Pending())
	})

	t.Run("should fire again after a quiet period", func(t *testing.T) {
		sched := &persist.ManualScheduler{}
		var calls int
		d := persist.NewDebouncer(sched, time.Second, func() { calls++ })
		d.Trigger()
		sched.Advance(time.Second)
		d.Trigger()
		sched.Advance(time.Second)
		assert.Equal(t, 2, calls)
	})

	t.Run("should drop the pending call on stop", func(t *testing.T) {
		sched := &persist.ManualScheduler{}
		var calls int
		d := persist.NewDebouncer(sched, time.Second, func() { calls++ })
		d.Trigger()
		d.Stop()
		d.Trigger()
		sched.Advance(time.Hour)
		assert.Equal(t, 0, calls)
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("should run on the real clock without leaking goroutines", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		var calls atomic.Int32
		done := make(chan struct{})
		d := persist.NewDebouncer(nil, 10*time.Millisecond, func() {
			if calls.Add(1) == 1 {
				close(done)
			}
		})
		for i := 0; i < 5; i++ {
			d.Trigger()
		}
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("debounced call never ran")
		}
		d.Stop()
		assert.Equal(t, int32(1), calls.Load())
	})
}
