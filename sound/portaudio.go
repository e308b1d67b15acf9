package sound

import (
	"context"
	"errors"
	"log"

	"github.com/d1nch8g/recapp/audio"
	"github.com/gordonklaus/portaudio"
)

type PlayerConfig struct {
	SampleRate      float64
	FramesPerBuffer int
	OutputChannels  int
}

func GetDefaultConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate:      audio.SampleRate,
		FramesPerBuffer: 1024,
		OutputChannels:  audio.Channels,
	}
}

// PortaudioSink plays a static clip on the default output device.
type PortaudioSink struct {
	stream      *portaudio.Stream
	audioBuffer []int16
	clip        []byte
	written     int
	config      PlayerConfig
}

var _ Sink = (*PortaudioSink)(nil)

func NewPortaudioSink(config PlayerConfig) *PortaudioSink {
	return &PortaudioSink{
		config:      config,
		audioBuffer: make([]int16, config.FramesPerBuffer*config.OutputChannels),
	}
}

func (p *PortaudioSink) Initialize() error {
	return portaudio.Initialize()
}

func (p *PortaudioSink) Terminate() {
	portaudio.Terminate()
}

func (p *PortaudioSink) Open(size int) error {
	stream, err := portaudio.OpenDefaultStream(
		0,
		p.config.OutputChannels,
		p.config.SampleRate,
		p.config.FramesPerBuffer,
		p.audioBuffer,
	)
	if err != nil {
		return err
	}
	p.stream = stream
	p.clip = make([]byte, size)
	p.written = 0
	return nil
}

func (p *PortaudioSink) Write(pcm []byte) (int, error) {
	if p.stream == nil {
		return 0, errors.New("stream not opened")
	}
	n := copy(p.clip[p.written:], pcm)
	p.written += n
	return n, nil
}

func (p *PortaudioSink) Play(ctx context.Context) error {
	if p.stream == nil {
		return errors.New("stream not opened")
	}

	if err := p.stream.Start(); err != nil {
		return err
	}
	defer p.stream.Stop()

	chunk := len(p.audioBuffer) * audio.BytesPerSample
	for off := 0; off < len(p.clip); off += chunk {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Zero-fill the tail of the last chunk
		n := audio.DecodeSamples(p.audioBuffer, p.clip[off:])
		clear(p.audioBuffer[n:])

		if err := p.stream.Write(); err != nil {
			log.Printf("Error writing audio: %v", err)
			continue
		}
	}

	return nil
}

func (p *PortaudioSink) Close() error {
	if p.stream == nil {
		return nil
	}
	err := p.stream.Close()
	p.stream = nil
	p.clip = nil
	return err
}
