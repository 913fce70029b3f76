package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Vovarama1992/twin_talk/internal/capture"
	"github.com/Vovarama1992/twin_talk/internal/exchange"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu      sync.Mutex
	calls   []string
	texts   []string
	uploads []string
	spoken  []string
}

func (s *fakeSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeSession) Boot(context.Context) { s.record("boot") }

func (s *fakeSession) SendText(_ context.Context, text string) error {
	s.record("send")
	s.texts = append(s.texts, text)
	return nil
}

func (s *fakeSession) UploadFile(_ context.Context, path string) error {
	s.record("upload")
	s.uploads = append(s.uploads, path)
	return nil
}

func (s *fakeSession) ToggleCapture(context.Context) error {
	s.record("capture")
	return nil
}

func (s *fakeSession) Speak(_ context.Context, handle, text string) error {
	s.record("speak")
	s.spoken = append(s.spoken, handle+":"+text)
	return nil
}

func (s *fakeSession) ToggleMode() exchange.Mode {
	s.record("mode")
	return exchange.ModeOriginal
}

func (s *fakeSession) CycleTargetLanguage() string {
	s.record("lang")
	return "fr"
}

func (s *fakeSession) Clear(context.Context) error {
	s.record("clear")
	return nil
}

func newModel(strategy capture.Strategy) (Model, *fakeSession) {
	s := &fakeSession{}
	m := New(context.Background(), s, strategy)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), s
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = step(t, m, FocusMsg{})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestEnterSendsTypedText(t *testing.T) {
	m, s := newModel(capture.StrategyUnavailable)
	m = typeText(t, m, "hello")

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())

	assert.Nil(t, cmd())
	assert.Equal(t, []string{"hello"}, s.texts)
}

func TestEnterOnBlankInputDoesNothing(t *testing.T) {
	m, _ := newModel(capture.StrategyUnavailable)

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestUploadUsesInputAsPath(t *testing.T) {
	m, s := newModel(capture.StrategyUnavailable)
	m = typeText(t, m, "/tmp/memo.m4a")

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"/tmp/memo.m4a"}, s.uploads)
}

func TestRecordKeyInertWithoutCapture(t *testing.T) {
	m, _ := newModel(capture.StrategyUnavailable)
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Nil(t, cmd)

	m, s := newModel(capture.StrategyRecorder)
	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"capture"}, s.calls)
}

func TestReplyRendering(t *testing.T) {
	m, _ := newModel(capture.StrategyUnavailable)

	m, _ = step(t, m, UserMsg{Text: "bonjour"})
	m, _ = step(t, m, ReplyMsg{Handle: "reply-1", Reply: exchange.Reply{
		SummarizedText:   "a greeting",
		JaText:           "挨拶",
		DetectedLanguage: "fr",
		SpeakTarget:      "挨拶",
	}})

	content := m.renderConversation()
	assert.Contains(t, content, "bonjour")
	assert.Contains(t, content, "Summary")
	assert.Contains(t, content, "a greeting")
	assert.Contains(t, content, "挨拶")

	m, _ = step(t, m, ModeMsg{Mode: exchange.ModeOriginal})
	assert.Contains(t, m.renderConversation(), "Original")
	assert.NotContains(t, m.renderConversation(), "Summary")
}

func TestSpeakTargetsLatestSpeakableReply(t *testing.T) {
	m, s := newModel(capture.StrategyUnavailable)
	m, _ = step(t, m, ReplyMsg{Handle: "reply-1", Reply: exchange.Reply{SummarizedText: "x", SpeakTarget: "first"}})
	m, _ = step(t, m, ReplyMsg{Handle: "reply-2", Reply: exchange.Reply{SummarizedText: "y"}})

	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"reply-1:first"}, s.spoken)

	m, _ = step(t, m, PlaybackEnabledMsg{Enabled: false})
	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Nil(t, cmd)
}

func TestPlayingIndicator(t *testing.T) {
	m, _ := newModel(capture.StrategyUnavailable)
	m, _ = step(t, m, ReplyMsg{Handle: "reply-1", Reply: exchange.Reply{SummarizedText: "x", SpeakTarget: "t"}})

	m, _ = step(t, m, PlayingMsg{Handle: "reply-1", Playing: true})
	assert.Contains(t, m.renderConversation(), "playing")

	m, _ = step(t, m, PlayingMsg{Handle: "reply-1", Playing: false})
	assert.NotContains(t, m.renderConversation(), "playing")
}

func TestErrorClearsOnlyLatest(t *testing.T) {
	m, _ := newModel(capture.StrategyUnavailable)

	m, cmd := step(t, m, ErrorMsg{Err: errors.New("first")})
	require.NotNil(t, cmd)
	m, _ = step(t, m, ErrorMsg{Err: errors.New("second")})

	m, _ = step(t, m, clearErrorMsg{seq: 1})
	assert.Contains(t, m.View(), "second")

	m, _ = step(t, m, clearErrorMsg{seq: 2})
	assert.NotContains(t, m.View(), "second")
}

func TestClearConversation(t *testing.T) {
	m, _ := newModel(capture.StrategyUnavailable)
	m, _ = step(t, m, UserMsg{Text: "hello"})

	m, _ = step(t, m, ClearConversationMsg{})
	assert.Empty(t, m.items)
	assert.Contains(t, m.renderConversation(), "No messages yet")
}

func TestInputTextMsgReplacesInput(t *testing.T) {
	m, _ := newModel(capture.StrategyNative)

	m, _ = step(t, m, InputTextMsg{Text: "Hello world"})
	assert.Equal(t, "Hello world", m.input.Value())
}

func TestBridgeForwardsAfterAttach(t *testing.T) {
	b := NewBridge()
	b.RenderUser("dropped")

	var got []tea.Msg
	b.attach(func(msg tea.Msg) { got = append(got, msg) })

	b.RenderUser("hi")
	b.SetPlaying("reply-1", true)
	b.Notify(nil)
	b.Notify(errors.New("boom"))

	require.Len(t, got, 3)
	assert.Equal(t, UserMsg{Text: "hi"}, got[0])
	assert.Equal(t, PlayingMsg{Handle: "reply-1", Playing: true}, got[1])
	assert.IsType(t, ErrorMsg{}, got[2])
}

func TestPendingPlaceholderIsReplacedByReply(t *testing.T) {
	m, _ := newModel(capture.StrategyRecorder)
	m, _ = step(t, m, UserMsg{Text: "earlier"})

	m, _ = step(t, m, PendingMsg{On: true})
	require.Len(t, m.items, 2)
	assert.Equal(t, itemPending, m.items[1].kind)
	assert.Contains(t, m.renderConversation(), "waiting for reply")

	m, _ = step(t, m, PendingMsg{On: false})
	m, _ = step(t, m, UserMsg{Text: "recorded speech"})
	m, _ = step(t, m, ReplyMsg{Handle: "reply-1", Reply: exchange.Reply{SummarizedText: "s"}})

	require.Len(t, m.items, 3)
	for _, it := range m.items {
		assert.NotEqual(t, itemPending, it.kind)
	}
	assert.NotContains(t, m.renderConversation(), "waiting for reply")
}
