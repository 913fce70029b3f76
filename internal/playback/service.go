package playback

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Controller runs at most one playback at a time. Requests made while the
// lock is held are dropped, not queued.
type Controller struct {
	lock     Lock
	synth    Synthesizer
	player   Player
	controls Controls
	log      *zap.Logger
}

func NewController(lock Lock, synth Synthesizer, player Player, controls Controls, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		lock:     lock,
		synth:    synth,
		player:   player,
		controls: controls,
		log:      log.Named("playback"),
	}
}

// RequestPlayback synthesizes text and plays it, blocking until playback ends.
// Empty text and contended requests return nil without side effects.
func (c *Controller) RequestPlayback(ctx context.Context, text, handle string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !c.lock.TryAcquire() {
		c.log.Debug("playback busy, request dropped", zap.String("handle", handle))
		return nil
	}
	defer c.lock.Release()

	c.controls.SetPlaybackEnabled(false)
	defer c.controls.SetPlaybackEnabled(true)

	if err := c.play(ctx, text, handle); err != nil {
		c.log.Warn("playback failed", zap.String("handle", handle), zap.Error(err))
		c.controls.Notify(err)
		return err
	}
	return nil
}

func (c *Controller) play(ctx context.Context, text, handle string) error {
	audio, err := c.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	clip, err := c.player.Prepare(ctx, audio)
	if err != nil {
		return fmt.Errorf("prepare audio: %w", err)
	}
	defer func() {
		if err := clip.Release(); err != nil {
			c.log.Warn("release clip", zap.Error(err))
		}
	}()

	if err := clip.WaitReady(ctx); err != nil {
		return err
	}

	c.controls.SetPlaying(handle, true)
	defer c.controls.SetPlaying(handle, false)

	if err := clip.Play(ctx); err != nil {
		return fmt.Errorf("audio playback: %w", err)
	}
	return nil
}
