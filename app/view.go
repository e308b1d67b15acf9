package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/d1nch8g/recapp/audio"
	"github.com/d1nch8g/recapp/recorder"
)

const Usage = `How to use
  r  start recording; press again to stop
  p  play back the recording
  s  save the recording as a WAV file
  t  transcribe the recording
  u  show this help
  q  quit
Recording stops by itself when the buffer is full.`

type ButtonView struct {
	Label   string
	Enabled bool
}

type View struct {
	State      recorder.State
	Playing    bool
	Recorded   time.Duration
	Capacity   time.Duration
	Record     ButtonView
	Playback   ButtonView
	Usage      ButtonView
	Save       ButtonView
	Transcribe ButtonView
}

// View renders the current button state.
func (s *Session) View() View {
	state := s.rec.State()
	buf := s.rec.Buffer()

	s.mu.Lock()
	denied := s.denied
	playing := s.playing
	s.mu.Unlock()

	recording := state == recorder.Recording
	v := View{
		State:    state,
		Playing:  playing,
		Recorded: audio.Duration(buf.Len()),
		Capacity: audio.Duration(buf.Cap()),
		Record:   ButtonView{Label: "record", Enabled: !denied},
		Playback: ButtonView{Label: "playback", Enabled: !denied && !recording},
		Usage:    ButtonView{Label: "usage", Enabled: true},
		Save: ButtonView{
			Label:   "save",
			Enabled: s.opts.Exporter != nil && !recording,
		},
		Transcribe: ButtonView{
			Label:   "transcribe",
			Enabled: s.opts.Transcriber != nil && !recording,
		},
	}
	if recording {
		v.Record.Label = "stop"
	}
	return v
}

func (s *Session) enabled(b Button) bool {
	v := s.View()
	switch b {
	case ButtonRecord:
		return v.Record.Enabled
	case ButtonPlayback:
		return v.Playback.Enabled
	case ButtonUsage:
		return v.Usage.Enabled
	case ButtonSave:
		return v.Save.Enabled
	case ButtonTranscribe:
		return v.Transcribe.Enabled
	default:
		return false
	}
}

func (v View) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s / %s", v.State, v.Recorded.Round(100*time.Millisecond), v.Capacity.Round(100*time.Millisecond))
	if v.Playing {
		sb.WriteString(" (playing)")
	}
	for _, b := range []ButtonView{v.Record, v.Playback, v.Save, v.Transcribe, v.Usage} {
		if b.Enabled {
			fmt.Fprintf(&sb, "  [%s]", b.Label)
		} else {
			fmt.Fprintf(&sb, "  (%s)", b.Label)
		}
	}
	return sb.String()
}
