package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Vovarama1992/twin_talk/internal/capture"
	"github.com/Vovarama1992/twin_talk/internal/exchange"
	"github.com/Vovarama1992/twin_talk/internal/history"
	"github.com/Vovarama1992/twin_talk/internal/identity"
	"github.com/Vovarama1992/twin_talk/internal/playback"
	"go.uber.org/zap"
)

// MaxUploadBytes matches the transcription provider's file limit.
const MaxUploadBytes = 25 << 20

// AudioPlaceholder stands in for the user entry when a recording has no transcript.
const AudioPlaceholder = "(audio)"

type Controller struct {
	state    *State
	view     View
	identity *identity.Service
	store    history.Store
	exchange exchange.Client
	playback *playback.Controller
	capture  *capture.Coordinator
	log      *zap.Logger

	mu      sync.Mutex
	history *history.Log
	replies atomic.Int64
}

func New(state *State, view View, d Deps) *Controller {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		state:    state,
		view:     view,
		identity: identity.NewService(d.Identity, log.Named("identity")),
		store:    d.Store,
		exchange: d.Exchange,
		log:      log.Named("session"),
	}
	c.playback = playback.NewController(state, d.Synthesizer, d.Player, view, log)
	c.capture = capture.NewCoordinator(d.Platform, view, c.onRecording, log.Named("capture"))
	return c
}

func (c *Controller) State() *State { return c.state }

func (c *Controller) CaptureStrategy() capture.Strategy { return c.capture.Strategy() }

// Boot resolves identity, restores the log into the view, applies the
// display mode and focuses input, in that order.
func (c *Controller) Boot(ctx context.Context) {
	conv := c.conversation(ctx)
	c.log.Info("session boot", zap.String("log_key", conv.Key()), zap.String("capture", c.capture.Strategy().String()))

	for _, e := range conv.Restore(ctx) {
		c.renderEntry(e)
	}

	c.view.ApplyMode(c.state.Mode())
	c.view.SetTargetLanguage(c.state.TargetLanguage())
	c.view.FocusInput()
}

func (c *Controller) renderEntry(e history.Entry) {
	switch e.Kind {
	case history.KindUser:
		c.view.RenderUser(e.Text)
	case history.KindAI:
		if e.Reply != nil {
			c.view.RenderReply(c.nextHandle(), *e.Reply)
		}
	default:
		c.log.Warn("skipping unknown log entry", zap.String("type", string(e.Kind)))
	}
}

func (c *Controller) nextHandle() string {
	return "reply-" + strconv.FormatInt(c.replies.Add(1), 10)
}

func (c *Controller) conversation(ctx context.Context) *history.Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.history == nil {
		c.history = history.NewLog(c.store, c.identity.LogKey(ctx), c.log)
	}
	return c.history
}

// SendText exchanges typed text. Blank input is ignored.
func (c *Controller) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	_, err := c.send(ctx, exchange.Input{Text: text}, func(exchange.Reply) string { return text })
	if err != nil {
		c.view.SetInputText(text)
	}
	return err
}

// SendAudio exchanges recorded or uploaded audio. The transcript becomes the user entry.
func (c *Controller) SendAudio(ctx context.Context, rec capture.Recording) error {
	if len(rec.Data) == 0 {
		return nil
	}
	_, err := c.send(ctx, exchange.Input{Audio: rec.Data, AudioName: rec.Name}, func(r exchange.Reply) string {
		if t := strings.TrimSpace(r.OriginalText); t != "" {
			return t
		}
		return AudioPlaceholder
	})
	return err
}

// UploadFile sends an audio file from disk.
func (c *Controller) UploadFile(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err == nil && info.Size() > MaxUploadBytes {
		err = fmt.Errorf("file is larger than %d MB", MaxUploadBytes>>20)
	}
	var data []byte
	if err == nil {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		err = fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		c.view.Notify(err)
		return err
	}

	return c.SendAudio(ctx, capture.Recording{Data: data, Name: filepath.Base(path)})
}

func (c *Controller) onRecording(ctx context.Context, rec capture.Recording) {
	_ = c.SendAudio(ctx, rec)
}

func (c *Controller) send(ctx context.Context, in exchange.Input, userText func(exchange.Reply) string) (exchange.Reply, error) {
	c.view.SetPending(true)
	reply, err := c.exchange.Send(ctx, in, c.state.TargetLanguage(), c.state.Mode())
	c.view.SetPending(false)
	if err != nil {
		c.log.Warn("exchange failed", zap.Error(err))
		c.view.Notify(userError(err))
		return exchange.Reply{}, err
	}

	user := userText(reply)
	c.view.RenderUser(user)
	c.view.RenderReply(c.nextHandle(), reply)

	if err := c.conversation(ctx).Append(ctx, history.UserEntry(user), history.AIEntry(reply)); err != nil {
		c.log.Error("persist exchange", zap.Error(err))
	}

	if lang := reply.DetectedLanguage; lang != "" && lang != exchange.DefaultLanguage {
		c.state.SetTargetLanguage(lang)
		c.view.SetTargetLanguage(lang)
	}
	return reply, nil
}

func userError(err error) error {
	var remote *exchange.RemoteError
	if errors.As(err, &remote) {
		return fmt.Errorf("server: %s", remote.Message)
	}
	return err
}

// ToggleCapture starts or stops voice input. It returns capture.ErrUnavailable
// when this machine has no way to capture audio.
func (c *Controller) ToggleCapture(ctx context.Context) error {
	return c.capture.Toggle(ctx)
}

// WaitCapture blocks until the current capture session, if any, has finished.
func (c *Controller) WaitCapture() {
	c.capture.Wait()
}

// Speak plays text for the reply identified by handle.
func (c *Controller) Speak(ctx context.Context, handle, text string) error {
	return c.playback.RequestPlayback(ctx, text, handle)
}

// ToggleMode flips how summaries are labeled. Nothing is re-fetched.
func (c *Controller) ToggleMode() exchange.Mode {
	mode := c.state.ToggleMode()
	c.view.ApplyMode(mode)
	return mode
}

func (c *Controller) SelectTargetLanguage(lang string) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return
	}
	c.state.SetTargetLanguage(lang)
	c.view.SetTargetLanguage(lang)
}

// CycleTargetLanguage selects the next entry of Languages.
func (c *Controller) CycleTargetLanguage() string {
	lang := c.state.NextLanguage()
	c.SelectTargetLanguage(lang)
	return lang
}

// Clear removes the persisted conversation and empties the view.
func (c *Controller) Clear(ctx context.Context) error {
	if err := c.conversation(ctx).Clear(ctx); err != nil {
		err = fmt.Errorf("clear history: %w", err)
		c.view.Notify(err)
		return err
	}
	c.view.ClearConversation()
	return nil
}
