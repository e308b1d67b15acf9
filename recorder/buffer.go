package recorder

import (
	"log"
	"sync/atomic"
)

// StopReason tells why a capture loop returned.
type StopReason int

const (
	// Stopped means the recording flag was cleared.
	Stopped StopReason = iota
	// Full means the buffer has no room left.
	Full
)

func (r StopReason) String() string {
	switch r {
	case Stopped:
		return "stopped"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// Reader is the read half of a capture source.
type Reader interface {
	Read(p []byte) (int, error)
}

// Buffer is a fixed-capacity PCM buffer filled from the start by a single
// writer. The cursor never exceeds the capacity.
type Buffer struct {
	data   []byte
	offset atomic.Int64
}

func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Cap returns the buffer capacity in bytes.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Len returns the number of bytes captured so far. Safe during capture.
func (b *Buffer) Len() int {
	return int(b.offset.Load())
}

// Bytes returns the whole buffer, including the unrecorded zero tail.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Recorded returns the captured region.
func (b *Buffer) Recorded() []byte {
	return b.data[:b.Len()]
}

// Reset zeroes the buffer and rewinds the cursor.
func (b *Buffer) Reset() {
	clear(b.data)
	b.offset.Store(0)
}

// Fill reads from r into the buffer, at most chunk bytes per call, while
// recording is set and there is room. Reads that return no bytes are retried
// immediately.
func (b *Buffer) Fill(r Reader, chunk int, recording *atomic.Bool) StopReason {
	if chunk <= 0 {
		chunk = len(b.data)
	}

	off := b.Len()
	failing := false
	for recording.Load() && off < len(b.data) {
		end := min(off+chunk, len(b.data))
		n, err := r.Read(b.data[off:end])
		if err != nil {
			if !failing {
				log.Printf("Error reading audio: %v", err)
			}
			failing = true
		} else {
			failing = false
		}

		if n <= 0 {
			continue
		}
		off += min(n, end-off)
		b.offset.Store(int64(off))
	}

	if off >= len(b.data) {
		return Full
	}
	return Stopped
}
