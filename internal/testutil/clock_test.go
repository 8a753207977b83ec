package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStepClock_Advances(t *testing.T) {
	clock := NewStepClock(epoch, time.Millisecond)

	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch.Add(time.Millisecond), clock.Now())
	assert.Equal(t, epoch.Add(2*time.Millisecond), clock.Current())
}

func TestStepClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewStepClock(epoch, 0)

	assert.Equal(t, epoch, clock.Now())
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(epoch, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, epoch, clock.Now())
}

func TestStepClock_Concurrent(t *testing.T) {
	clock := NewStepClock(epoch, time.Nanosecond)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, epoch.Add(100*time.Nanosecond), clock.Current())
}
