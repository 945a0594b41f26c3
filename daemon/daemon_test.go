package daemon

import (
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(o Outcome, n *int) Func {
	return func() Outcome {
		*n++
		return o
	}
}

func TestNoCallbacks(t *testing.T) {
	d := New(IgnoreSignals())
	assert.Equal(t, Start, d.State())
	assert.False(t, d.IsRunning())

	assert.Equal(t, Unspecified, d.StartAll())
	assert.True(t, d.IsRunning())

	assert.Equal(t, Unspecified, d.ReloadAll())
	assert.True(t, d.IsRunning())
	assert.Equal(t, Running, d.State())

	assert.Equal(t, Unspecified, d.CloseAll())
	assert.Equal(t, Stop, d.State())
	assert.False(t, d.IsRunning())
}

func TestStartAllIsIdempotent(t *testing.T) {
	var n int
	d := New(IgnoreSignals())
	d.SetStartFunc(counting(Failed, &n))

	assert.Equal(t, Failed, d.StartAll())
	assert.Equal(t, Running, d.State())
	assert.Equal(t, Failed, d.StartAll())
	assert.Equal(t, Running, d.State())
	assert.Equal(t, 2, n)
}

func TestCloseAllFailed(t *testing.T) {
	var n int
	d := New(IgnoreSignals())
	d.SetCloseFunc(counting(Failed, &n))
	d.StartAll()

	assert.Equal(t, Failed, d.CloseAll())
	assert.Equal(t, Stop, d.State())
	assert.Equal(t, 1, n)
}

func TestIsRunningConsumesTransient(t *testing.T) {
	outcomes := []struct {
		name     string
		register bool
		outcome  Outcome
		running  bool
	}{
		{"absent", false, Unspecified, true},
		{"unspecified", true, Unspecified, true},
		{"succeeded", true, Succeeded, true},
		{"failed", true, Failed, false},
	}

	for _, s := range []State{Reload, User1, User2} {
		for _, tc := range outcomes {
			t.Run(s.String()+"/"+tc.name, func(t *testing.T) {
				calls := map[State]int{}
				d := New(IgnoreSignals())
				if tc.register {
					f := func(st State) Func {
						return func() Outcome {
							calls[st]++
							// reset to Running happens before the callback
							assert.Equal(t, Running, d.State())
							return tc.outcome
						}
					}
					d.SetReloadFunc(f(Reload))
					d.SetUser1Func(f(User1))
					d.SetUser2Func(f(User2))
				}
				d.StartAll()
				d.SetState(s)

				assert.Equal(t, tc.running, d.IsRunning())
				if tc.running {
					assert.Equal(t, Running, d.State())
				} else {
					assert.Equal(t, Stop, d.State())
				}
				if tc.register {
					assert.Equal(t, map[State]int{s: 1}, calls)
				}

				// consumed once, never twice
				d.IsRunning()
				if tc.register {
					assert.Equal(t, 1, calls[s])
				}
			})
		}
	}
}

func TestLastWriteWins(t *testing.T) {
	var reloads, user1, user2 int
	d := New(IgnoreSignals())
	d.SetReloadFunc(counting(Succeeded, &reloads))
	d.SetUser1Func(counting(Succeeded, &user1))
	d.SetUser2Func(counting(Succeeded, &user2))
	d.StartAll()

	d.SetState(Reload)
	d.SetState(User1)
	d.SetState(User2)
	assert.True(t, d.IsRunning())
	assert.Equal(t, []int{0, 0, 1}, []int{reloads, user1, user2})

	d.SetState(User1)
	d.SetState(Stop)
	assert.False(t, d.IsRunning())
	assert.Equal(t, 0, user1)
}

func TestOneCallbackPerCall(t *testing.T) {
	var reloads, user1 int
	d := New(IgnoreSignals())
	d.SetReloadFunc(func() Outcome {
		reloads++
		// as if SIGUSR1 arrived while reloading
		d.SetState(User1)
		return Succeeded
	})
	d.SetUser1Func(counting(Succeeded, &user1))
	d.StartAll()

	d.ReloadAll()
	assert.True(t, d.IsRunning())
	assert.Equal(t, []int{1, 0}, []int{reloads, user1})
	assert.Equal(t, User1, d.State())

	assert.True(t, d.IsRunning())
	assert.Equal(t, []int{1, 1}, []int{reloads, user1})
	assert.Equal(t, Running, d.State())
}

func TestReloadFromReload(t *testing.T) {
	var reloads int
	d := New(IgnoreSignals())
	d.SetReloadFunc(func() Outcome {
		reloads++
		d.ReloadAll()
		return Succeeded
	})
	d.StartAll()

	d.ReloadAll()
	for i := 1; i <= 3; i++ {
		assert.True(t, d.IsRunning())
		assert.Equal(t, i, reloads)
		assert.Equal(t, Reload, d.State())
	}
}

func TestStopDuringCallback(t *testing.T) {
	var reloads int
	d := New(IgnoreSignals())
	d.SetReloadFunc(func() Outcome {
		reloads++
		// as if SIGTERM arrived while reloading
		d.SetState(Stop)
		return Succeeded
	})
	d.StartAll()

	d.ReloadAll()
	assert.False(t, d.IsRunning())
	assert.Equal(t, Stop, d.State())
	assert.Equal(t, 1, reloads)
}

func TestLastFuncWins(t *testing.T) {
	var a, b int
	d := New(IgnoreSignals())
	d.SetStartFunc(counting(Succeeded, &a))
	d.SetStartFunc(counting(Failed, &b))
	assert.Equal(t, Failed, d.StartAll())
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)

	d.SetStartFunc(nil)
	assert.Equal(t, Unspecified, d.StartAll())
}

type app struct {
	calls []string
}

func (a *app) Start() Outcome  { a.calls = append(a.calls, "start"); return Succeeded }
func (a *app) Reload() Outcome { a.calls = append(a.calls, "reload"); return Succeeded }
func (a *app) User1() Outcome  { a.calls = append(a.calls, "user1"); return Unspecified }
func (a *app) User2() Outcome  { a.calls = append(a.calls, "user2"); return Failed }
func (a *app) Close() Outcome  { a.calls = append(a.calls, "close"); return Succeeded }

func TestBind(t *testing.T) {
	a := &app{}
	d := New(IgnoreSignals())
	d.Bind(a)

	d.StartAll()
	d.ReloadAll()
	d.IsRunning()
	d.SetState(User1)
	d.IsRunning()
	d.SetState(User2)
	assert.False(t, d.IsRunning())
	d.CloseAll()

	assert.Equal(t, []string{"start", "reload", "user1", "user2", "close"}, a.calls)
}

func TestSignals(t *testing.T) {
	var logged []string
	var mu sync.Mutex
	d := New(Logger(func(level int, msg string) {
		mu.Lock()
		logged = append(logged, msg)
		mu.Unlock()
	}))
	defer d.StopSignals()

	var reloads, user1, user2 int
	d.SetReloadFunc(counting(Succeeded, &reloads))
	d.SetUser1Func(counting(Succeeded, &user1))
	d.SetUser2Func(counting(Succeeded, &user2))
	d.StartAll()

	send := func(sig syscall.Signal, want State) {
		require.NoError(t, syscall.Kill(os.Getpid(), sig))
		require.Eventually(t, func() bool { return d.State() == want },
			5*time.Second, time.Millisecond, "%s not delivered", sig)
	}

	send(syscall.SIGHUP, Reload)
	assert.True(t, d.IsRunning())
	send(syscall.SIGUSR1, User1)
	assert.True(t, d.IsRunning())
	send(syscall.SIGUSR2, User2)
	assert.True(t, d.IsRunning())
	assert.Equal(t, []int{1, 1, 1}, []int{reloads, user1, user2})

	send(syscall.SIGTERM, Stop)
	assert.False(t, d.IsRunning())

	d.StartAll()
	send(syscall.SIGINT, Stop)
	assert.False(t, d.IsRunning())

	mu.Lock()
	assert.Contains(t, logged, "SIGHUP: reload requested")
	mu.Unlock()
}

func TestInstance(t *testing.T) {
	const n = 8
	got := make([]*Daemon, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Instance()
		}(i)
	}
	wg.Wait()

	require.NotNil(t, got[0])
	for _, d := range got {
		assert.Same(t, got[0], d)
	}
	assert.NotNil(t, got[0].handler)
}
