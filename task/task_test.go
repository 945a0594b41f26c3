package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBroadcastWakesAll(t *testing.T) {
	ev := NewEvent()
	var wg sync.WaitGroup
	woken := make(chan bool, 3)
	var waiting sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		waiting.Add(1)
		go func() {
			defer wg.Done()
			waiting.Done()
			woken <- ev.Wait(context.Background(), time.Minute)
		}()
	}
	waiting.Wait()

	// the waiters may not be inside Wait yet. Broadcast until they all returned.
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	for loop := true; loop; {
		ev.Broadcast()
		select {
		case <-done:
			loop = false
		case <-time.After(10 * time.Millisecond):
		}
	}
	close(woken)
	for w := range woken {
		assert.True(t, w)
	}
}

func TestEventTimeout(t *testing.T) {
	var ev Event
	start := time.Now()
	assert.False(t, ev.Wait(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestEventContext(t *testing.T) {
	ev := NewEvent()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, ev.Wait(ctx, time.Minute))
}

func TestStopIsPrompt(t *testing.T) {
	ev := NewEvent()
	ctx, cancel := context.WithCancel(context.Background())

	var steps atomic.Int32
	var c Controller
	require.NoError(t, c.Start(ctx, time.Minute, time.Millisecond, func(time.Duration) time.Duration {
		steps.Add(1)
		return time.Minute
	}, ev))
	require.Eventually(t, func() bool { return steps.Load() == 1 }, time.Second, time.Millisecond)

	start := time.Now()
	cancel()
	c.Stop()
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), steps.Load())
	assert.False(t, c.Running())
}

func TestStopWithExplicitBroadcast(t *testing.T) {
	ev := NewEvent()
	ctx, cancel := context.WithCancel(context.Background())

	var c Controller
	require.NoError(t, c.Start(ctx, time.Second, time.Millisecond, Fixed(time.Minute, func() {}), ev))

	start := time.Now()
	cancel()
	ev.Broadcast()
	c.Stop()
	assert.Less(t, time.Since(start), time.Second)
}

func TestZeroDurationUsesMin(t *testing.T) {
	ev := NewEvent()
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var got []time.Duration
	var c Controller
	require.NoError(t, c.Start(ctx, 5*time.Millisecond, 7*time.Millisecond, func(d time.Duration) time.Duration {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, d)
		return 0
	}, ev))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 3
	}, 5*time.Second, time.Millisecond)
	cancel()
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5*time.Millisecond, got[0])
	for _, d := range got[1:] {
		assert.Equal(t, 7*time.Millisecond, d)
	}
}

func TestStartTwice(t *testing.T) {
	ev := NewEvent()
	ctx, cancel := context.WithCancel(context.Background())
	step := Fixed(time.Minute, func() {})

	var c Controller
	require.NoError(t, c.Start(ctx, 0, time.Millisecond, step, ev))
	assert.ErrorIs(t, c.Start(ctx, 0, time.Millisecond, step, ev), ErrAlreadyStarted)
	assert.True(t, c.Running())

	cancel()
	c.Stop()
	c.Stop()

	// startable again once joined
	ctx2, cancel2 := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx2, 0, time.Millisecond, step, ev))
	cancel2()
	c.Stop()
}

func TestStopIdle(t *testing.T) {
	var c Controller
	c.Stop()
	assert.False(t, c.Running())
}

func TestAccelerate(t *testing.T) {
	var seen []time.Duration
	step := Accelerate(time.Second, 4*time.Second, 0, func(next time.Duration) {
		seen = append(seen, next)
	})

	d := time.Second
	for i := 0; i < 5; i++ {
		d = step(d)
	}
	assert.Equal(t, []time.Duration{
		2 * time.Second, 3 * time.Second, 4 * time.Second, 0, time.Second,
	}, seen)
}

func TestGroup(t *testing.T) {
	var logged []string
	var mu sync.Mutex
	g := NewGroup(context.Background())
	g.Logger = func(level int, msg string) {
		mu.Lock()
		logged = append(logged, msg)
		mu.Unlock()
	}

	var a, b atomic.Int32
	require.NoError(t, g.Go("a", 0, time.Millisecond, Fixed(time.Hour, func() { a.Add(1) })))
	require.NoError(t, g.Go("b", 0, time.Millisecond, Fixed(time.Hour, func() { b.Add(1) })))
	require.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, time.Millisecond)

	start := time.Now()
	g.StopAll()
	assert.Less(t, time.Since(start), time.Second)
	assert.Error(t, g.Context().Err())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Task a started", "Task b started", "Task b stopped", "Task a stopped"}, logged)
}

func TestRunningDuringStop(t *testing.T) {
	ev := NewEvent()
	ctx, cancel := context.WithCancel(context.Background())

	entered := make(chan struct{})
	unblock := make(chan struct{})
	var c Controller
	require.NoError(t, c.Start(ctx, time.Minute, time.Millisecond, func(time.Duration) time.Duration {
		close(entered)
		<-unblock
		return time.Minute
	}, ev))
	<-entered

	cancel()
	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	// a slow step delays Stop but not Running
	running := make(chan bool, 1)
	go func() { running <- c.Running() }()
	select {
	case r := <-running:
		assert.True(t, r)
	case <-time.After(time.Second):
		t.Fatal("Running blocked by Stop")
	}

	close(unblock)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.False(t, c.Running())
}

func TestGroupGoAfterStopAll(t *testing.T) {
	g := NewGroup(context.Background())
	g.StopAll()

	var n atomic.Int32
	err := g.Go("late", 0, time.Millisecond, Fixed(time.Hour, func() { n.Add(1) }))
	assert.ErrorIs(t, err, ErrGroupStopped)

	parent, cancel := context.WithCancel(context.Background())
	g = NewGroup(parent)
	cancel()
	assert.ErrorIs(t, g.Go("late", 0, time.Millisecond, Fixed(time.Hour, func() { n.Add(1) })), ErrGroupStopped)
	g.StopAll()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), n.Load())
}
