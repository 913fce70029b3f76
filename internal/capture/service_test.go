package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	startErr error
	events   chan Event

	mu     sync.Mutex
	starts int
	stops  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{events: make(chan Event, 16)}
}

func (b *fakeBackend) Start(ctx context.Context) (<-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.starts++
	if b.startErr != nil {
		return nil, b.startErr
	}
	return b.events, nil
}

func (b *fakeBackend) Stop() error {
	b.mu.Lock()
	b.stops++
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.starts, b.stops
}

type fakePlatform struct {
	recognizer Backend
	recorder   Backend
}

func (p fakePlatform) Recognizer() (Backend, bool) { return p.recognizer, p.recognizer != nil }
func (p fakePlatform) Recorder() (Backend, bool)   { return p.recorder, p.recorder != nil }

type fakeSink struct {
	mu        sync.Mutex
	texts     []string
	recording []bool
	errs      []error
}

func (s *fakeSink) SetInputText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
}

func (s *fakeSink) SetRecording(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = append(s.recording, on)
}

func (s *fakeSink) Notify(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *fakeSink) snapshot() ([]string, []bool, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...), append([]bool(nil), s.recording...), append([]error(nil), s.errs...)
}

func TestSelectPrefersRecognizer(t *testing.T) {
	rec, recorder := newFakeBackend(), newFakeBackend()

	s, b := Select(fakePlatform{recognizer: rec, recorder: recorder})
	assert.Equal(t, StrategyNative, s)
	assert.Same(t, rec, b)

	s, b = Select(fakePlatform{recorder: recorder})
	assert.Equal(t, StrategyRecorder, s)
	assert.Same(t, recorder, b)

	s, b = Select(fakePlatform{})
	assert.Equal(t, StrategyUnavailable, s)
	assert.Nil(t, b)
}

func TestToggleUnavailableIsInert(t *testing.T) {
	sink := &fakeSink{}
	c := NewCoordinator(fakePlatform{}, sink, nil, nil)

	assert.ErrorIs(t, c.Toggle(context.Background()), ErrUnavailable)
	assert.Equal(t, StateIdle, c.State())
	_, recording, errs := sink.snapshot()
	assert.Empty(t, recording)
	assert.Empty(t, errs)
}

func TestNativeFragmentsAccumulate(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}
	c := NewCoordinator(fakePlatform{recognizer: backend}, sink, nil, nil)

	require.NoError(t, c.Toggle(context.Background()))
	assert.Equal(t, StateCapturing, c.State())

	backend.events <- Event{Kind: EventFragments, Fragments: []string{"Hello"}}
	backend.events <- Event{Kind: EventFragments, Fragments: []string{"Hello", " world"}}

	require.NoError(t, c.Toggle(context.Background()))
	assert.Equal(t, StateStopping, c.State())
	backend.events <- Event{Kind: EventEnd}

	c.Wait()
	assert.Equal(t, StateIdle, c.State())

	texts, recording, errs := sink.snapshot()
	require.NotEmpty(t, texts)
	assert.Equal(t, "Hello world", texts[len(texts)-1])
	assert.Equal(t, []string{"Hello", "Hello world"}, texts)
	assert.Equal(t, []bool{true, false}, recording)
	assert.Empty(t, errs)

	_, stops := backend.counts()
	assert.Equal(t, 1, stops)
}

func TestToggleWhileStoppingIsNoop(t *testing.T) {
	backend := newFakeBackend()
	c := NewCoordinator(fakePlatform{recognizer: backend}, &fakeSink{}, nil, nil)

	require.NoError(t, c.Toggle(context.Background()))
	require.NoError(t, c.Toggle(context.Background()))
	require.NoError(t, c.Toggle(context.Background()))

	starts, stops := backend.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
	assert.Equal(t, StateStopping, c.State())

	backend.events <- Event{Kind: EventEnd}
	c.Wait()
	assert.Equal(t, StateIdle, c.State())
}

func TestStartFailureStaysIdle(t *testing.T) {
	backend := newFakeBackend()
	backend.startErr = errors.New("permission denied")
	sink := &fakeSink{}
	c := NewCoordinator(fakePlatform{recorder: backend}, sink, nil, nil)

	err := c.Toggle(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State())

	_, recording, errs := sink.snapshot()
	assert.Empty(t, recording)
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "permission denied")
}

func TestRecorderResolvesAudio(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}

	var (
		got       Recording
		stateSeen State
		calls     int
	)
	var c *Coordinator
	c = NewCoordinator(fakePlatform{recorder: backend}, sink, func(ctx context.Context, rec Recording) {
		calls++
		got = rec
		stateSeen = c.State()
	}, nil)

	require.NoError(t, c.Toggle(context.Background()))
	backend.events <- Event{Kind: EventFragments, Fragments: []string{"ignored"}}
	backend.events <- Event{Kind: EventChunk, Chunk: []byte("abc")}
	backend.events <- Event{Kind: EventChunk, Chunk: []byte("def")}
	require.NoError(t, c.Toggle(context.Background()))
	backend.events <- Event{Kind: EventEnd}

	c.Wait()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []byte("abcdef"), got.Data)
	assert.Equal(t, recordingName, got.Name)
	assert.Equal(t, StateResolving, stateSeen)
	assert.Equal(t, StateIdle, c.State())

	texts, _, _ := sink.snapshot()
	assert.Empty(t, texts)
}

func TestToggleDuringResolvingIsIgnored(t *testing.T) {
	backend := newFakeBackend()
	release := make(chan struct{})
	entered := make(chan struct{})
	c := NewCoordinator(fakePlatform{recorder: backend}, &fakeSink{}, func(ctx context.Context, rec Recording) {
		close(entered)
		<-release
	}, nil)

	require.NoError(t, c.Toggle(context.Background()))
	backend.events <- Event{Kind: EventChunk, Chunk: []byte("x")}
	backend.events <- Event{Kind: EventEnd}
	<-entered

	require.NoError(t, c.Toggle(context.Background()))
	starts, _ := backend.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, StateResolving, c.State())

	close(release)
	c.Wait()
	assert.Equal(t, StateIdle, c.State())
}

func TestBackendErrorDropsAudio(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}
	called := false
	c := NewCoordinator(fakePlatform{recorder: backend}, sink, func(ctx context.Context, rec Recording) {
		called = true
	}, nil)

	require.NoError(t, c.Toggle(context.Background()))
	backend.events <- Event{Kind: EventChunk, Chunk: []byte("abc")}
	backend.events <- Event{Kind: EventError, Err: errors.New("device lost")}

	c.Wait()
	assert.False(t, called)
	assert.Equal(t, StateIdle, c.State())
	_, recording, errs := sink.snapshot()
	assert.Equal(t, []bool{true, false}, recording)
	require.Len(t, errs, 1)
}

func TestCancelReturnsToIdle(t *testing.T) {
	backend := newFakeBackend()
	called := false
	c := NewCoordinator(fakePlatform{recorder: backend}, &fakeSink{}, func(ctx context.Context, rec Recording) {
		called = true
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Toggle(ctx))
	backend.events <- Event{Kind: EventChunk, Chunk: []byte("abc")}
	cancel()

	require.Eventually(t, func() bool {
		_, stops := backend.counts()
		return stops == 1
	}, time.Second, 5*time.Millisecond)
	close(backend.events)

	c.Wait()
	assert.False(t, called)
	assert.Equal(t, StateIdle, c.State())
}
