// Package playback plays synthesized speech, one request at a time.
package playback

import "context"

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Clip is audio prepared for playback. WaitReady returns once enough is
// buffered to play without interruption; Release frees the local resource.
type Clip interface {
	WaitReady(ctx context.Context) error
	Play(ctx context.Context) error
	Release() error
}

type Player interface {
	Prepare(ctx context.Context, audio []byte) (Clip, error)
}

// Lock is the process-wide playback lock. It is not reentrant.
type Lock interface {
	TryAcquire() bool
	Release()
}

// Controls is the view side of playback.
type Controls interface {
	SetPlaybackEnabled(enabled bool)
	SetPlaying(handle string, playing bool)
	Notify(err error)
}
