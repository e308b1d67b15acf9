package stt

import "context"

// Transcriber turns recorded PCM into text.
type Transcriber interface {
	// Transcribe recognizes 16-bit mono PCM sampled at sampleRate Hz
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)

	// Close closes the client and cleans up resources
	Close() error
}
