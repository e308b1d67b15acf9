// Package permission tracks whether the user allowed microphone access.
package permission

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
)

type Status int32

const (
	Unknown Status = iota
	Granted
	Denied
)

func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// ParseStatus maps a config value to a Status. Anything unrecognized is
// Unknown, which means the user will be asked.
func ParseStatus(v string) Status {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "granted", "yes", "true", "1":
		return Granted
	case "denied", "no", "false", "0":
		return Denied
	default:
		return Unknown
	}
}

// Requester asks for microphone access.
type Requester interface {
	Request(ctx context.Context) (bool, error)
}

// Gate holds the permission decision.
type Gate struct {
	status atomic.Int32
}

func (g *Gate) Status() Status {
	return Status(g.status.Load())
}

func (g *Gate) Granted() bool {
	return g.Status() == Granted
}

// Request asks req unless a decision already exists.
func (g *Gate) Request(ctx context.Context, req Requester) (Status, error) {
	if s := g.Status(); s != Unknown {
		return s, nil
	}

	ok, err := req.Request(ctx)
	if err != nil {
		return Unknown, fmt.Errorf("permission request failed: %w", err)
	}

	s := Denied
	if ok {
		s = Granted
	}
	g.status.Store(int32(s))
	return s, nil
}

// Set records a decision without asking.
func (g *Gate) Set(s Status) {
	g.status.Store(int32(s))
}

// LineReader is satisfied by *bufio.Reader.
type LineReader interface {
	ReadString(delim byte) (string, error)
}

// Prompt asks on a terminal. Only an explicit yes grants access.
type Prompt struct {
	In  LineReader
	Out io.Writer
}

func (p Prompt) Request(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprint(p.Out, "Allow microphone access? [y/N] ")
	line, err := p.In.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
