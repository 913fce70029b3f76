package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// DefaultRecordCommand captures the default input device as webm/opus on stdout.
var DefaultRecordCommand = []string{
	"ffmpeg", "-hide_banner", "-loglevel", "error",
	"-f", "pulse", "-i", "default",
	"-c:a", "libopus", "-f", "webm", "-",
}

const chunkSize = 32 * 1024

// CommandRecorder records by running a capture command and collecting its stdout.
type CommandRecorder struct {
	argv []string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
}

func NewCommandRecorder(argv []string) *CommandRecorder {
	if len(argv) == 0 {
		argv = DefaultRecordCommand
	}
	return &CommandRecorder{argv: argv}
}

// Available reports whether the capture command is on PATH.
func (r *CommandRecorder) Available() bool {
	_, err := exec.LookPath(r.argv[0])
	return err == nil
}

func (r *CommandRecorder) Start(ctx context.Context) (<-chan Event, error) {
	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	// let the encoder finalize the container on cancel
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recorder stdout: %w", err)
	}
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start recorder: %w", err)
	}

	r.mu.Lock()
	r.cmd = cmd
	r.stopped = false
	r.mu.Unlock()

	events := make(chan Event)
	go r.read(ctx, cmd, stdout, stderr, events)
	return events, nil
}

func (r *CommandRecorder) read(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, stderr *bytes.Buffer, events chan<- Event) {
	defer close(events)

	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	buf := make([]byte, chunkSize)
	total := 0
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			total += n
			send(Event{Kind: EventChunk, Chunk: chunk})
		}
		if err != nil {
			break
		}
	}

	waitErr := cmd.Wait()

	r.mu.Lock()
	stopped := r.stopped
	if r.cmd == cmd {
		r.cmd = nil
	}
	r.mu.Unlock()

	// an interrupted encoder exits non-zero; that is the normal stop path
	if waitErr != nil && !stopped && ctx.Err() == nil {
		msg := strings.TrimSpace(stderr.String())
		send(Event{Kind: EventError, Err: fmt.Errorf("recorder exited: %w: %s", waitErr, msg)})
		return
	}
	if total == 0 && !stopped && ctx.Err() == nil {
		send(Event{Kind: EventError, Err: fmt.Errorf("recorder produced no audio")})
		return
	}
	send(Event{Kind: EventEnd})
}

// Stop interrupts the capture command; buffered audio is still delivered.
func (r *CommandRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	r.stopped = true
	return r.cmd.Process.Signal(os.Interrupt)
}
