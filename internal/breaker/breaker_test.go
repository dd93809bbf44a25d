package breaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("dependency down")

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *fakeClock) {
	b := New(threshold, cooldown)
	clock := newFakeClock()
	b.now = clock.Now
	return b, clock
}

func failN(t *testing.T, b *Breaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := b.Execute(context.Background(), func(ctx context.Context) error {
			return errDown
		})
		require.ErrorIs(t, err, errDown)
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	failN(t, b, 2)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 2, b.Failures())

	failN(t, b, 1)
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, 3, b.Failures())
}

func TestBreaker_OpenRejectsWithoutInvokingOp(t *testing.T) {
	b, _ := newTestBreaker(2, time.Minute)
	failN(t, b, 2)

	invoked := false
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		invoked = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, invoked, "open circuit must not invoke the operation")
}

func TestBreaker_SuccessResetsFailureCounter(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	failN(t, b, 2)

	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Failures())
	assert.Equal(t, StateClosed, b.State())

	// A fresh run of failures must need the full threshold again.
	failN(t, b, 2)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_CooldownAllowsProbe(t *testing.T) {
	b, clock := newTestBreaker(2, time.Minute)
	failN(t, b, 2)
	require.Equal(t, StateOpen, b.State())

	// Just short of the cooldown the call is still rejected.
	clock.Advance(59 * time.Second)
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.ErrorIs(t, err, ErrOpen)

	// At the cooldown boundary a probe runs; on success the circuit closes.
	clock.Advance(time.Second)
	err = b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Failures())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker(2, time.Minute)
	failN(t, b, 2)

	clock.Advance(time.Minute)
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return errDown
	})
	require.ErrorIs(t, err, errDown)
	assert.Equal(t, StateOpen, b.State())

	// The failed probe restarts the cooldown clock.
	clock.Advance(30 * time.Second)
	err = b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)

	clock.Advance(30 * time.Second)
	err = b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_SingleProbeInFlight(t *testing.T) {
	b, clock := newTestBreaker(2, time.Minute)
	failN(t, b, 2)
	clock.Advance(time.Minute)

	probeStarted := make(chan struct{})
	probeRelease := make(chan struct{})
	probeDone := make(chan error, 1)

	go func() {
		probeDone <- b.Execute(context.Background(), func(ctx context.Context) error {
			close(probeStarted)
			<-probeRelease
			return nil
		})
	}()

	<-probeStarted
	assert.Equal(t, StateHalfOpen, b.State())

	// While the probe is in flight every other call is rejected.
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)

	close(probeRelease)
	require.NoError(t, <-probeDone)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_ErrorPassthrough(t *testing.T) {
	b, _ := newTestBreaker(5, time.Minute)

	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return errDown
	})
	assert.ErrorIs(t, err, errDown)
	assert.NotErrorIs(t, err, ErrOpen)
}

func TestBreaker_DefaultsOnNonPositiveConfig(t *testing.T) {
	b := New(0, 0)
	assert.Equal(t, DefaultFailureThreshold, b.threshold)
	assert.Equal(t, DefaultCooldown, b.cooldown)
}

func TestBreaker_ConcurrentFailures(t *testing.T) {
	b, _ := newTestBreaker(5, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(context.Background(), func(ctx context.Context) error {
				return errDown
			})
		}()
	}
	wg.Wait()

	// Every goroutine either recorded a failure or was rejected; the
	// circuit must have opened and stayed open.
	assert.Equal(t, StateOpen, b.State())
	assert.GreaterOrEqual(t, b.Failures(), 5)
}

func TestBreaker_StaleSuccessDoesNotCloseOpenCircuit(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	// A slow call is admitted while the circuit is still closed.
	probe, err := b.allow()
	require.NoError(t, err)
	require.False(t, probe)

	// Concurrent failures open the circuit before the slow call finishes.
	failN(t, b, 3)
	require.Equal(t, StateOpen, b.State())

	// The slow call now completes successfully. That result is stale and
	// must not close the circuit; recovery goes through the probe.
	b.record(probe, true)
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, 3, b.Failures())

	err = b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestDo_PassesResultThrough(t *testing.T) {
	b, _ := newTestBreaker(2, time.Minute)

	got, err := Do(context.Background(), b, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	failN(t, b, 2)
	got, err = Do(context.Background(), b, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, got)
}
