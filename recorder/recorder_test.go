package recorder

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowSource returns a blocking-read source that delivers n bytes per read,
// similar to a real device.
func slowSource(n int) *fakeSource {
	src := &fakeSource{}
	src.readFn = func(p []byte) (int, error) {
		time.Sleep(time.Millisecond)
		k := min(n, len(p))
		for i := 0; i < k; i++ {
			p[i] = 1
		}
		return k, nil
	}
	return src
}

func waitForState(t *testing.T, states <-chan State, want State) {
	t.Helper()
	for {
		select {
		case s := <-states:
			if s == want {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestRecorder_StartTwiceOpensOnce(t *testing.T) {
	src := slowSource(4)
	rec := New(src, NewBuffer(1<<20), granted(true), 4)

	require.NoError(t, rec.Start())
	require.NoError(t, rec.Start())

	opened, _, _ := src.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, Recording, rec.State())

	require.NoError(t, rec.Stop())
}

func TestRecorder_StopReleasesSource(t *testing.T) {
	src := slowSource(4)
	rec := New(src, NewBuffer(1<<20), granted(true), 4)

	require.NoError(t, rec.Start())
	require.NoError(t, rec.Stop())

	opened, stopped, closed := src.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, stopped)
	assert.Equal(t, 1, closed)
	assert.Equal(t, Idle, rec.State())

	// The device is free again.
	require.NoError(t, rec.Start())
	assert.Equal(t, Recording, rec.State())
	require.NoError(t, rec.Stop())

	opened, _, closed = src.counts()
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
}

func TestRecorder_StopImmediately(t *testing.T) {
	src := slowSource(6)
	buf := NewBuffer(1 << 20)
	rec := New(src, buf, granted(true), 6)

	require.NoError(t, rec.Start())

	stopped := make(chan error, 1)
	go func() { stopped <- rec.Stop() }()

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stop did not return promptly")
	}

	assert.LessOrEqual(t, int64(buf.Len()), src.delivered.Load())
	assert.Less(t, buf.Len(), buf.Cap())
}

func TestRecorder_StopWhenIdle(t *testing.T) {
	src := slowSource(4)
	rec := New(src, NewBuffer(16), granted(true), 4)

	require.NoError(t, rec.Stop())

	_, stopped, closed := src.counts()
	assert.Zero(t, stopped)
	assert.Zero(t, closed)
}

func TestRecorder_WithoutPermission(t *testing.T) {
	src := slowSource(4)
	rec := New(src, NewBuffer(16), granted(false), 4)

	require.NoError(t, rec.Start())

	opened, _, _ := src.counts()
	assert.Zero(t, opened)
	assert.Equal(t, Idle, rec.State())
}

func TestRecorder_OpenFailure(t *testing.T) {
	src := &fakeSource{openErr: errors.New("no microphone")}
	rec := New(src, NewBuffer(16), granted(true), 4)

	err := rec.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, src.openErr)
	assert.Equal(t, Idle, rec.State())
}

func TestRecorder_BufferFullReturnsToIdle(t *testing.T) {
	src := &fakeSource{}
	buf := NewBuffer(64)
	rec := New(src, buf, granted(true), 8)

	states := make(chan State, 4)
	rec.OnStateChange(func(s State) { states <- s })

	require.NoError(t, rec.Start())
	waitForState(t, states, Recording)
	waitForState(t, states, Idle)

	assert.Equal(t, Idle, rec.State())
	assert.Equal(t, buf.Cap(), buf.Len())

	opened, stopped, closed := src.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, stopped)
	assert.Equal(t, 1, closed)

	// Stop after a full buffer has nothing left to release.
	require.NoError(t, rec.Stop())
	_, _, closed = src.counts()
	assert.Equal(t, 1, closed)
}

func TestRecorder_NewSessionClearsBuffer(t *testing.T) {
	src := &fakeSource{}
	buf := NewBuffer(32)
	rec := New(src, buf, granted(true), 8)

	states := make(chan State, 8)
	rec.OnStateChange(func(s State) { states <- s })

	require.NoError(t, rec.Start())
	waitForState(t, states, Idle)
	require.Equal(t, 32, buf.Len())

	// Second, shorter take from a source that never delivers.
	src.readFn = func(p []byte) (int, error) { return 0, nil }
	require.NoError(t, rec.Start())
	require.NoError(t, rec.Stop())

	assert.Zero(t, buf.Len())
	assert.Equal(t, make([]byte, 32), buf.Bytes())
}

func TestRecorder_Toggle(t *testing.T) {
	src := slowSource(2)
	rec := New(src, NewBuffer(1<<20), granted(true), 2)

	var mu sync.Mutex
	var seen []State
	rec.OnStateChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	require.NoError(t, rec.Toggle())
	assert.Equal(t, Recording, rec.State())
	require.NoError(t, rec.Toggle())
	assert.Equal(t, Idle, rec.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Recording, Idle}, seen)
}
