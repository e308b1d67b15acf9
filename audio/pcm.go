package audio

import (
	"encoding/binary"
	"time"
)

// Fixed PCM format used for both capture and playback.
const (
	SampleRate     = 44100
	Channels       = 1
	BitDepth       = 16
	BytesPerSample = BitDepth / 8
	FrameSize      = Channels * BytesPerSample
)

// Duration returns the playing time of n bytes of PCM.
func Duration(n int) time.Duration {
	frames := n / FrameSize
	return time.Duration(frames) * time.Second / SampleRate
}

// EncodeSamples writes samples into dst as little-endian 16-bit PCM and
// returns the number of bytes written.
func EncodeSamples(dst []byte, samples []int16) int {
	n := min(len(samples), len(dst)/BytesPerSample)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(samples[i]))
	}
	return n * BytesPerSample
}

// DecodeSamples reads little-endian 16-bit PCM from src into dst and returns
// the number of samples decoded. A trailing odd byte is ignored.
func DecodeSamples(dst []int16, src []byte) int {
	n := min(len(dst), len(src)/BytesPerSample)
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2 : i*2+2]))
	}
	return n
}
