package audio

import (
	"errors"

	"github.com/gordonklaus/portaudio"
)

var ErrNotOpen = errors.New("stream not opened")

type Config struct {
	SampleRate      float64
	FramesPerBuffer int
	InputChannels   int
	OutputChannels  int
}

// MinBufferSize is the size in bytes of a single device read.
func (c Config) MinBufferSize() int {
	return c.FramesPerBuffer * c.InputChannels * BytesPerSample
}

func GetDefaultConfig() Config {
	return Config{
		SampleRate:      SampleRate,
		FramesPerBuffer: 1792,
		InputChannels:   Channels,
		OutputChannels:  0,
	}
}

// PortaudioSource captures from the default input device.
type PortaudioSource struct {
	stream  *portaudio.Stream
	samples []int16
	raw     []byte
	pending []byte
	config  Config
}

var _ Source = (*PortaudioSource)(nil)

func NewPortaudioSource(config Config) *PortaudioSource {
	frames := config.FramesPerBuffer * config.InputChannels
	return &PortaudioSource{
		config:  config,
		samples: make([]int16, frames),
		raw:     make([]byte, frames*BytesPerSample),
	}
}

func (s *PortaudioSource) Initialize() error {
	return portaudio.Initialize()
}

func (s *PortaudioSource) Terminate() {
	portaudio.Terminate()
}

func (s *PortaudioSource) Open() error {
	stream, err := portaudio.OpenDefaultStream(
		s.config.InputChannels,
		0,
		s.config.SampleRate,
		s.config.FramesPerBuffer,
		s.samples,
	)
	if err != nil {
		return err
	}
	s.stream = stream
	s.pending = nil
	return nil
}

func (s *PortaudioSource) Start() error {
	if s.stream == nil {
		return ErrNotOpen
	}
	return s.stream.Start()
}

// Read blocks for one device buffer when nothing is pending, then hands out
// the converted bytes across as many calls as p requires.
func (s *PortaudioSource) Read(p []byte) (int, error) {
	if s.stream == nil {
		return 0, ErrNotOpen
	}

	if len(s.pending) == 0 {
		if err := s.stream.Read(); err != nil {
			return 0, err
		}
		n := EncodeSamples(s.raw, s.samples)
		s.pending = s.raw[:n]
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *PortaudioSource) Stop() error {
	if s.stream == nil {
		return nil
	}
	return s.stream.Stop()
}

func (s *PortaudioSource) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	s.pending = nil
	return err
}
