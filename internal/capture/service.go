package capture

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const recordingName = "recording.webm"

// Select applies the fixed backend policy: live recognition, then recording, then nothing.
func Select(p Platform) (Strategy, Backend) {
	if p == nil {
		return StrategyUnavailable, nil
	}
	if b, ok := p.Recognizer(); ok {
		return StrategyNative, b
	}
	if b, ok := p.Recorder(); ok {
		return StrategyRecorder, b
	}
	return StrategyUnavailable, nil
}

// Coordinator drives one capture session at a time through
// idle → capturing → stopping → (resolving) → idle.
type Coordinator struct {
	strategy Strategy
	backend  Backend
	sink     Sink
	onAudio  AudioHandler
	log      *zap.Logger

	mu    sync.Mutex
	state State
	done  chan struct{}
}

func NewCoordinator(p Platform, sink Sink, onAudio AudioHandler, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	strategy, backend := Select(p)
	log.Info("capture backend selected", zap.Stringer("strategy", strategy))

	done := make(chan struct{})
	close(done)

	return &Coordinator{
		strategy: strategy,
		backend:  backend,
		sink:     sink,
		onAudio:  onAudio,
		log:      log,
		done:     done,
	}
}

func (c *Coordinator) Strategy() Strategy { return c.strategy }

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until the current session, if any, is back to idle.
func (c *Coordinator) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	<-done
}

// Toggle is the single user control: it starts a session when idle and stops it
// while capturing. ctx bounds the whole session it starts.
func (c *Coordinator) Toggle(ctx context.Context) error {
	if c.strategy == StrategyUnavailable {
		return ErrUnavailable
	}

	c.mu.Lock()
	switch c.state {
	case StateIdle:
		events, err := c.backend.Start(ctx)
		if err != nil {
			c.mu.Unlock()
			c.log.Warn("capture start failed", zap.Error(err))
			c.sink.Notify(fmt.Errorf("microphone unavailable: %w", err))
			return err
		}
		c.state = StateCapturing
		done := make(chan struct{})
		c.done = done
		c.mu.Unlock()

		c.sink.SetRecording(true)
		go c.run(ctx, events, done)
		return nil

	case StateCapturing:
		c.state = StateStopping
		c.mu.Unlock()
		if err := c.backend.Stop(); err != nil {
			c.log.Warn("capture stop failed", zap.Error(err))
		}
		return nil

	default:
		st := c.state
		c.mu.Unlock()
		c.log.Debug("capture toggle ignored", zap.Stringer("state", st))
		return nil
	}
}

func (c *Coordinator) run(ctx context.Context, events <-chan Event, done chan struct{}) {
	defer close(done)
	defer c.setState(StateIdle)

	var (
		audio     bytes.Buffer
		failed    bool
		cancelled bool
	)
	ctxDone := ctx.Done()

loop:
	for {
		select {
		case <-ctxDone:
			cancelled = true
			ctxDone = nil
			if err := c.backend.Stop(); err != nil {
				c.log.Debug("capture stop on cancel", zap.Error(err))
			}

		case ev, ok := <-events:
			if !ok {
				break loop
			}
			switch ev.Kind {
			case EventFragments:
				if c.strategy != StrategyNative {
					continue
				}
				// engines re-report earlier segments, so rebuild from index 0
				c.sink.SetInputText(strings.Join(ev.Fragments, ""))
			case EventChunk:
				audio.Write(ev.Chunk)
			case EventError:
				failed = true
				c.log.Warn("capture backend error", zap.Error(ev.Err))
				c.sink.Notify(fmt.Errorf("capture: %w", ev.Err))
				break loop
			case EventEnd:
				break loop
			}
		}
	}

	c.sink.SetRecording(false)

	if c.strategy != StrategyRecorder || failed || cancelled || audio.Len() == 0 {
		return
	}

	c.setState(StateResolving)
	c.log.Info("resolving recording", zap.Int("bytes", audio.Len()))
	if c.onAudio != nil {
		c.onAudio(ctx, Recording{Data: audio.Bytes(), Name: recordingName})
	}
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
