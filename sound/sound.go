package sound

import (
	"context"
	"fmt"
)

// Sink is a static-mode audio output: the whole clip is written up front and
// then played in one go.
type Sink interface {
	// Initialize initializes the audio playback system
	Initialize() error

	// Terminate terminates the audio playback system
	Terminate()

	// Open prepares a clip of size bytes
	Open(size int) error

	// Write appends PCM to the clip
	Write(pcm []byte) (int, error)

	// Play plays the clip and blocks until it ends or ctx is cancelled
	Play(ctx context.Context) error

	// Close releases the output device
	Close() error
}

// Player plays whole PCM buffers through a Sink.
type Player struct {
	sink Sink
}

func NewPlayer(sink Sink) *Player {
	return &Player{sink: sink}
}

// Play writes all of pcm to a sink sized to len(pcm) and plays it.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if pcm == nil {
		return nil
	}

	if err := p.sink.Open(len(pcm)); err != nil {
		return fmt.Errorf("failed to open output sink: %w", err)
	}
	defer p.sink.Close()

	n, err := p.sink.Write(pcm)
	if err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}
	if n != len(pcm) {
		return fmt.Errorf("short clip write: %d of %d bytes", n, len(pcm))
	}

	return p.sink.Play(ctx)
}
