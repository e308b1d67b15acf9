// Package export saves recordings to disk.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/d1nch8g/recapp/audio"
)

// WAVWriter writes 16-bit PCM as WAV files.
type WAVWriter struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

func NewWAVWriter() *WAVWriter {
	return &WAVWriter{
		SampleRate: audio.SampleRate,
		BitDepth:   audio.BitDepth,
		Channels:   audio.Channels,
	}
}

// Write saves pcm to path, creating parent directories as needed.
func (w *WAVWriter) Write(path string, pcm []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, w.SampleRate, w.BitDepth, w.Channels, 1)

	if err := enc.Write(&goaudio.IntBuffer{
		Data:           toInts(pcm),
		Format:         &goaudio.Format{SampleRate: w.SampleRate, NumChannels: w.Channels},
		SourceBitDepth: w.BitDepth,
	}); err != nil {
		return fmt.Errorf("failed to write to WAV encoder: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return out.Close()
}

func toInts(pcm []byte) []int {
	samples := make([]int16, len(pcm)/audio.BytesPerSample)
	audio.DecodeSamples(samples, pcm)

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s)
	}
	return ints
}
