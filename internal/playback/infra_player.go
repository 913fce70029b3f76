package playback

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

var (
	DefaultPlayCommand  = []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}
	DefaultProbeCommand = []string{"ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1"}
)

// ExecPlayer spools audio to a temp file and plays it with an external command.
type ExecPlayer struct {
	play  []string
	probe []string
}

func NewExecPlayer(play, probe []string) *ExecPlayer {
	if len(play) == 0 {
		play = DefaultPlayCommand
	}
	if len(probe) == 0 {
		probe = DefaultProbeCommand
	}
	return &ExecPlayer{play: play, probe: probe}
}

func (p *ExecPlayer) Prepare(ctx context.Context, audio []byte) (Clip, error) {
	f, err := os.CreateTemp("", "twin_talk-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("create clip: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write clip: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close clip: %w", err)
	}
	return &fileClip{path: f.Name(), play: p.play, probe: p.probe}, nil
}

type fileClip struct {
	path  string
	play  []string
	probe []string
}

// WaitReady succeeds once the spooled file probes as complete, decodable audio.
func (c *fileClip) WaitReady(ctx context.Context) error {
	d, err := AudioDuration(ctx, c.probe, c.path)
	if err != nil {
		return fmt.Errorf("audio not playable: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("audio not playable: zero duration")
	}
	return nil
}

func (c *fileClip) Play(ctx context.Context) error {
	args := append(append([]string{}, c.play[1:]...), c.path)
	out, err := exec.CommandContext(ctx, c.play[0], args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("play: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (c *fileClip) Release() error {
	return os.Remove(c.path)
}

// AudioDuration returns the duration in seconds reported by the probe command.
func AudioDuration(ctx context.Context, probe []string, path string) (float64, error) {
	args := append(append([]string{}, probe[1:]...), path)
	out, err := exec.CommandContext(ctx, probe[0], args...).Output()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
}
