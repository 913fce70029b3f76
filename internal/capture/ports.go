// Package capture turns live audio into an utterance using one of two
// mutually exclusive backends: live recognition or record-then-upload.
package capture

import (
	"context"
	"errors"
)

type State int

const (
	StateIdle State = iota
	StateCapturing
	StateStopping
	StateResolving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateStopping:
		return "stopping"
	case StateResolving:
		return "resolving"
	}
	return "unknown"
}

type Strategy int

const (
	StrategyUnavailable Strategy = iota
	StrategyNative
	StrategyRecorder
)

func (s Strategy) String() string {
	switch s {
	case StrategyNative:
		return "native"
	case StrategyRecorder:
		return "recorder"
	}
	return "unavailable"
}

type EventKind int

const (
	// EventFragments carries every fragment recognized so far, in index order.
	EventFragments EventKind = iota
	// EventChunk carries raw recorded audio.
	EventChunk
	EventEnd
	EventError
)

type Event struct {
	Kind      EventKind
	Fragments []string
	Chunk     []byte
	Err       error
}

// Backend is one platform capture source.
// Start fails when the audio device cannot be opened. The returned channel is
// closed after EventEnd or EventError, and also after ctx is cancelled.
type Backend interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Platform reports which capture backends exist here.
type Platform interface {
	Recognizer() (Backend, bool)
	Recorder() (Backend, bool)
}

// Sink is the view side of a capture session.
type Sink interface {
	SetInputText(text string)
	SetRecording(on bool)
	Notify(err error)
}

// Recording is the packaged audio of one record-then-upload session.
type Recording struct {
	Data []byte
	Name string
}

// AudioHandler resolves a finished recording into a reply.
type AudioHandler func(ctx context.Context, rec Recording)

var ErrUnavailable = errors.New("capture: no audio capture available")
