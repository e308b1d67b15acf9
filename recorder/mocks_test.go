package recorder

import (
	"errors"
	"sync"
	"sync/atomic"
)

type granted bool

func (g granted) Granted() bool { return bool(g) }

// fakeSource hands out bytes of value 1 on every read unless readFn is set.
type fakeSource struct {
	mu      sync.Mutex
	opened  int
	started int
	stopped int
	closed  int
	open    bool
	openErr error

	delivered atomic.Int64
	reads     atomic.Int64
	readFn    func(p []byte) (int, error)
}

func (f *fakeSource) Initialize() error { return nil }
func (f *fakeSource) Terminate()        {}

func (f *fakeSource) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	if f.open {
		return errors.New("device busy")
	}
	f.open = true
	f.opened++
	return nil
}

func (f *fakeSource) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return nil
}

func (f *fakeSource) Read(p []byte) (int, error) {
	f.reads.Add(1)
	var n int
	var err error
	if f.readFn != nil {
		n, err = f.readFn(p)
	} else {
		for i := range p {
			p[i] = 1
		}
		n = len(p)
	}
	if n > 0 {
		f.delivered.Add(int64(n))
	}
	return n, err
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
	return nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.closed++
	return nil
}

func (f *fakeSource) counts() (opened, stopped, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened, f.stopped, f.closed
}
