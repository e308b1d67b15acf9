// Package recorder captures microphone audio into a fixed in-memory buffer.
package recorder

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/d1nch8g/recapp/audio"
)

// State is the recording state.
type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// Permission reports whether microphone access has been granted.
type Permission interface {
	Granted() bool
}

// Recorder toggles capture sessions from a Source into a Buffer.
type Recorder struct {
	source audio.Source
	buffer *Buffer
	perm   Permission
	chunk  int

	recording atomic.Bool

	mu       sync.Mutex
	state    State
	done     chan struct{}
	onChange func(State)
}

// New creates an idle recorder. chunk is the number of bytes requested per
// device read.
func New(source audio.Source, buffer *Buffer, perm Permission, chunk int) *Recorder {
	return &Recorder{
		source: source,
		buffer: buffer,
		perm:   perm,
		chunk:  chunk,
	}
}

// OnStateChange registers fn to be called after every transition. fn is
// called without the recorder lock held, possibly from the capture goroutine.
func (r *Recorder) OnStateChange(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) Buffer() *Buffer {
	return r.buffer
}

// Start opens the capture source and begins a new session. It does nothing
// when permission is missing or a session is already running.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if !r.perm.Granted() || r.state == Recording {
		r.mu.Unlock()
		return nil
	}

	if err := r.source.Open(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to open capture source: %w", err)
	}
	if err := r.source.Start(); err != nil {
		r.source.Close()
		r.mu.Unlock()
		return fmt.Errorf("failed to start capture source: %w", err)
	}

	r.buffer.Reset()
	r.recording.Store(true)
	done := make(chan struct{})
	r.done = done
	r.state = Recording
	fn := r.onChange
	r.mu.Unlock()

	ready := make(chan struct{})
	go r.capture(done, ready)

	if fn != nil {
		fn(Recording)
	}
	close(ready)
	return nil
}

// Stop ends the running session, waits for the capture goroutine and
// releases the source. It does nothing when idle.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return nil
	}

	r.recording.Store(false)
	<-r.done
	err := r.release()
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(Idle)
	}
	return err
}

// Toggle starts when idle and stops when recording.
func (r *Recorder) Toggle() error {
	if r.State() == Recording {
		return r.Stop()
	}
	return r.Start()
}

// capture runs one session. ready is closed once Start has announced the
// Recording state, so a buffer that fills instantly is still reported in
// order.
func (r *Recorder) capture(done, ready chan struct{}) {
	reason := r.buffer.Fill(r.source, r.chunk, &r.recording)
	close(done)
	if reason != Full {
		return
	}
	<-ready

	r.mu.Lock()
	// Stop already ran for this session.
	if r.done != done {
		r.mu.Unlock()
		return
	}
	r.recording.Store(false)
	if err := r.release(); err != nil {
		log.Printf("Error releasing capture source: %v", err)
	}
	fn := r.onChange
	r.mu.Unlock()

	log.Printf("Capture buffer full after %s", audio.Duration(r.buffer.Len()))
	if fn != nil {
		fn(Idle)
	}
}

// release must be called with mu held.
func (r *Recorder) release() error {
	r.state = Idle
	r.done = nil

	var errs []error
	if err := r.source.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop capture source: %w", err))
	}
	if err := r.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close capture source: %w", err))
	}
	return errors.Join(errs...)
}
