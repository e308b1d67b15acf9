// Package app binds the record, playback and usage buttons to the recorder
// and the output device.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/d1nch8g/recapp/audio"
	"github.com/d1nch8g/recapp/permission"
	"github.com/d1nch8g/recapp/recorder"
)

var (
	ErrDisabled = errors.New("button disabled")
	ErrBusy     = errors.New("busy")
	ErrEmpty    = errors.New("nothing recorded")
)

type Button int

const (
	ButtonRecord Button = iota
	ButtonPlayback
	ButtonUsage
	ButtonSave
	ButtonTranscribe
)

func (b Button) String() string {
	switch b {
	case ButtonRecord:
		return "record"
	case ButtonPlayback:
		return "playback"
	case ButtonUsage:
		return "usage"
	case ButtonSave:
		return "save"
	case ButtonTranscribe:
		return "transcribe"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

type Player interface {
	Play(ctx context.Context, pcm []byte) error
}

type Exporter interface {
	Write(path string, pcm []byte) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int) (string, error)
}

// Options holds the optional buttons. A nil Exporter or Transcriber disables
// the matching button.
type Options struct {
	Exporter    Exporter
	ExportDir   string
	Transcriber Transcriber
	Now         func() time.Time
}

// Session is the single screen of the application.
type Session struct {
	rec    *recorder.Recorder
	gate   *permission.Gate
	player Player
	opts   Options

	mu       sync.Mutex
	denied   bool
	playing  bool
	playback sync.WaitGroup
	onChange func(View)
}

func NewSession(rec *recorder.Recorder, gate *permission.Gate, player Player, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		rec:    rec,
		gate:   gate,
		player: player,
		opts:   opts,
	}
	rec.OnStateChange(func(recorder.State) { s.changed() })
	return s
}

// OnChange registers fn to be called with the new view whenever button state
// changes outside of Press, for example when the buffer fills up.
func (s *Session) OnChange(fn func(View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Init asks for microphone access. A denial disables record and playback.
func (s *Session) Init(ctx context.Context, req permission.Requester) error {
	status, err := s.gate.Request(ctx, req)
	if err != nil {
		return err
	}

	if status == permission.Denied {
		s.mu.Lock()
		s.denied = true
		s.mu.Unlock()
		log.Println("Microphone permission denied, recording disabled")
	}
	return nil
}

// Press handles a button press and returns a message for the user.
func (s *Session) Press(ctx context.Context, b Button) (string, error) {
	if !s.enabled(b) {
		return "", fmt.Errorf("%s: %w", b, ErrDisabled)
	}

	switch b {
	case ButtonRecord:
		return s.toggleRecording()
	case ButtonPlayback:
		return s.play(ctx)
	case ButtonUsage:
		return Usage, nil
	case ButtonSave:
		return s.save()
	case ButtonTranscribe:
		return s.transcribe(ctx)
	default:
		return "", fmt.Errorf("unknown button %d", int(b))
	}
}

// Wait blocks until background playback has finished.
func (s *Session) Wait() {
	s.playback.Wait()
}

// Close stops any running recording and waits for playback to end.
func (s *Session) Close() error {
	err := s.rec.Stop()
	s.Wait()
	return err
}

func (s *Session) toggleRecording() (string, error) {
	if s.rec.State() == recorder.Recording {
		if err := s.rec.Stop(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Stopped, %s recorded", audio.Duration(s.rec.Buffer().Len())), nil
	}

	if s.isPlaying() {
		return "", fmt.Errorf("playback in progress: %w", ErrBusy)
	}
	if err := s.rec.Start(); err != nil {
		return "", err
	}
	if s.rec.State() != recorder.Recording {
		return "", nil
	}
	return fmt.Sprintf("Recording, up to %s", audio.Duration(s.rec.Buffer().Cap())), nil
}

func (s *Session) play(ctx context.Context) (string, error) {
	buf := s.rec.Buffer()

	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return "", fmt.Errorf("playback in progress: %w", ErrBusy)
	}
	s.playing = true
	s.playback.Add(1)
	s.mu.Unlock()
	s.changed()

	go func() {
		defer s.playback.Done()
		defer func() {
			s.mu.Lock()
			s.playing = false
			s.mu.Unlock()
			s.changed()
		}()

		if err := s.player.Play(ctx, buf.Bytes()); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Playback error: %v", err)
		}
	}()

	return fmt.Sprintf("Playing %s", audio.Duration(buf.Cap())), nil
}

func (s *Session) save() (string, error) {
	pcm := s.rec.Buffer().Recorded()
	if len(pcm) == 0 {
		return "", ErrEmpty
	}

	name := fmt.Sprintf("recording-%s.wav", s.opts.Now().Format("20060102-150405"))
	path := filepath.Join(s.opts.ExportDir, name)
	if err := s.opts.Exporter.Write(path, pcm); err != nil {
		return "", fmt.Errorf("failed to save recording: %w", err)
	}
	return "Saved " + path, nil
}

func (s *Session) transcribe(ctx context.Context) (string, error) {
	pcm := s.rec.Buffer().Recorded()
	if len(pcm) == 0 {
		return "", ErrEmpty
	}

	text, err := s.opts.Transcriber.Transcribe(ctx, pcm, audio.SampleRate)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe recording: %w", err)
	}
	if text == "" {
		return "(no speech recognized)", nil
	}
	return text, nil
}

func (s *Session) isPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Session) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(s.View())
	}
}
