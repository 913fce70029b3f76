package playback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagLock struct{ held atomic.Bool }

func (l *flagLock) TryAcquire() bool { return l.held.CompareAndSwap(false, true) }
func (l *flagLock) Release()         { l.held.Store(false) }

type fakeSynth struct {
	mu      sync.Mutex
	calls   []string
	err     error
	entered chan struct{}
	gate    chan struct{}
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + text), nil
}

func (s *fakeSynth) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeClip struct {
	rec      *recorder
	readyErr error
	playErr  error
}

func (c *fakeClip) WaitReady(context.Context) error {
	c.rec.add("ready")
	return c.readyErr
}

func (c *fakeClip) Play(context.Context) error {
	c.rec.add("play")
	return c.playErr
}

func (c *fakeClip) Release() error {
	c.rec.add("release")
	return nil
}

type fakePlayer struct {
	rec      *recorder
	readyErr error
	playErr  error
}

func (p *fakePlayer) Prepare(_ context.Context, audio []byte) (Clip, error) {
	p.rec.add("prepare:" + string(audio))
	return &fakeClip{rec: p.rec, readyErr: p.readyErr, playErr: p.playErr}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeControls struct {
	rec      *recorder
	mu       sync.Mutex
	notified []error
}

func (c *fakeControls) SetPlaybackEnabled(enabled bool) {
	if enabled {
		c.rec.add("enable")
	} else {
		c.rec.add("disable")
	}
}

func (c *fakeControls) SetPlaying(handle string, playing bool) {
	if playing {
		c.rec.add("playing:" + handle)
	} else {
		c.rec.add("stopped:" + handle)
	}
}

func (c *fakeControls) Notify(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notified = append(c.notified, err)
}

type rig struct {
	lock     *flagLock
	synth    *fakeSynth
	player   *fakePlayer
	controls *fakeControls
	rec      *recorder
	ctrl     *Controller
}

func newRig() *rig {
	rec := &recorder{}
	r := &rig{
		lock:     &flagLock{},
		synth:    &fakeSynth{},
		player:   &fakePlayer{rec: rec},
		controls: &fakeControls{rec: rec},
		rec:      rec,
	}
	r.ctrl = NewController(r.lock, r.synth, r.player, r.controls, nil)
	return r
}

func TestRequestPlayback_Success(t *testing.T) {
	r := newRig()

	require.NoError(t, r.ctrl.RequestPlayback(context.Background(), "hello", "msg-1"))

	assert.Equal(t, []string{
		"disable",
		"prepare:mp3:hello",
		"ready",
		"playing:msg-1",
		"play",
		"stopped:msg-1",
		"release",
		"enable",
	}, r.rec.snapshot())
	assert.False(t, r.lock.held.Load())
	assert.Empty(t, r.controls.notified)
}

func TestRequestPlayback_EmptyTextIsNoop(t *testing.T) {
	r := newRig()

	require.NoError(t, r.ctrl.RequestPlayback(context.Background(), "  \n", "msg-1"))

	assert.Zero(t, r.synth.count())
	assert.Empty(t, r.rec.snapshot())
	assert.False(t, r.lock.held.Load())
}

func TestRequestPlayback_ContendedRequestIsDropped(t *testing.T) {
	r := newRig()
	r.synth.entered = make(chan struct{}, 1)
	r.synth.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- r.ctrl.RequestPlayback(context.Background(), "first", "a")
	}()

	select {
	case <-r.synth.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached synthesis")
	}

	require.NoError(t, r.ctrl.RequestPlayback(context.Background(), "second", "b"))
	assert.Equal(t, 1, r.synth.count())

	close(r.synth.gate)
	require.NoError(t, <-done)

	assert.NotContains(t, r.rec.snapshot(), "playing:b")
	assert.False(t, r.lock.held.Load())
}

func TestRequestPlayback_HeldLockDropsRequest(t *testing.T) {
	r := newRig()
	require.True(t, r.lock.TryAcquire())

	require.NoError(t, r.ctrl.RequestPlayback(context.Background(), "hello", "a"))

	assert.Zero(t, r.synth.count())
	assert.Empty(t, r.rec.snapshot())
	assert.True(t, r.lock.held.Load(), "a dropped request must not release someone else's lock")
}

func TestRequestPlayback_NotReadyNeverPlays(t *testing.T) {
	r := newRig()
	r.player.readyErr = errors.New("truncated stream")

	err := r.ctrl.RequestPlayback(context.Background(), "hello", "a")
	require.Error(t, err)

	events := r.rec.snapshot()
	assert.NotContains(t, events, "play")
	assert.NotContains(t, events, "playing:a")
	assert.Contains(t, events, "release")
	assert.Equal(t, "enable", events[len(events)-1])
	assert.False(t, r.lock.held.Load())
}

func TestRequestPlayback_SynthesisFailureReleasesLock(t *testing.T) {
	r := newRig()
	r.synth.err = errors.New("503 Service Unavailable")

	err := r.ctrl.RequestPlayback(context.Background(), "hello", "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, r.synth.err)

	assert.Equal(t, []string{"disable", "enable"}, r.rec.snapshot())
	require.Len(t, r.controls.notified, 1)
	assert.False(t, r.lock.held.Load())

	r.synth.err = nil
	require.NoError(t, r.ctrl.RequestPlayback(context.Background(), "hello", "a"))
	assert.Equal(t, 2, r.synth.count())
}

func TestRequestPlayback_PlayFailureClearsIndicator(t *testing.T) {
	r := newRig()
	r.player.playErr = errors.New("device busy")

	err := r.ctrl.RequestPlayback(context.Background(), "hello", "a")
	require.Error(t, err)

	assert.Equal(t, []string{
		"disable",
		"prepare:mp3:hello",
		"ready",
		"playing:a",
		"play",
		"stopped:a",
		"release",
		"enable",
	}, r.rec.snapshot())
	assert.False(t, r.lock.held.Load())
}
