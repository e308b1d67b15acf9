package sound

import (
	"context"
	"errors"
	"testing"

	"github.com/d1nch8g/recapp/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	size    int
	clip    []byte
	played  []byte
	opened  int
	closed  int
	openErr error
	playErr error
}

func (f *fakeSink) Initialize() error { return nil }
func (f *fakeSink) Terminate()        {}

func (f *fakeSink) Open(size int) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened++
	f.size = size
	f.clip = make([]byte, 0, size)
	return nil
}

func (f *fakeSink) Write(pcm []byte) (int, error) {
	n := min(len(pcm), f.size-len(f.clip))
	f.clip = append(f.clip, pcm[:n]...)
	return n, nil
}

func (f *fakeSink) Play(ctx context.Context) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append([]byte(nil), f.clip...)
	return nil
}

func (f *fakeSink) Close() error {
	f.closed++
	return nil
}

func TestPlayer_Play_WholeBuffer(t *testing.T) {
	sink := &fakeSink{}
	player := NewPlayer(sink)

	pcm := []byte{1, 2, 3, 4, 5, 6}
	require.NoError(t, player.Play(context.Background(), pcm))

	assert.Equal(t, len(pcm), sink.size)
	assert.Equal(t, pcm, sink.played)
	assert.Equal(t, 1, sink.opened)
	assert.Equal(t, 1, sink.closed)
}

func TestPlayer_Play_SilentBuffer(t *testing.T) {
	sink := &fakeSink{}
	player := NewPlayer(sink)

	pcm := make([]byte, audio.SampleRate*audio.FrameSize*2)
	require.NoError(t, player.Play(context.Background(), pcm))

	require.Len(t, sink.played, len(pcm))
	assert.Equal(t, pcm, sink.played)
	assert.Equal(t, audio.Duration(len(pcm)), audio.Duration(len(sink.played)))
}

func TestPlayer_Play_NilBuffer(t *testing.T) {
	sink := &fakeSink{}
	require.NoError(t, NewPlayer(sink).Play(context.Background(), nil))
	assert.Zero(t, sink.opened)
}

func TestPlayer_Play_OpenError(t *testing.T) {
	sink := &fakeSink{openErr: errors.New("no device")}
	err := NewPlayer(sink).Play(context.Background(), []byte{0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, sink.openErr)
	assert.Zero(t, sink.closed)
}

func TestPlayer_Play_ClosesOnPlayError(t *testing.T) {
	sink := &fakeSink{playErr: context.Canceled}
	err := NewPlayer(sink).Play(context.Background(), []byte{0, 0})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sink.closed)
}
