// Package tui is the terminal front end of the conversation client.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/Vovarama1992/twin_talk/internal/capture"
	"github.com/Vovarama1992/twin_talk/internal/exchange"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

// Session is the set of operations the keys trigger.
type Session interface {
	Boot(ctx context.Context)
	SendText(ctx context.Context, text string) error
	UploadFile(ctx context.Context, path string) error
	ToggleCapture(ctx context.Context) error
	Speak(ctx context.Context, handle, text string) error
	ToggleMode() exchange.Mode
	CycleTargetLanguage() string
	Clear(ctx context.Context) error
}

const errorTTL = 5 * time.Second

// chrome is the number of rows outside the conversation viewport.
const chrome = 6

type itemKind int

const (
	itemUser itemKind = iota
	itemReply
	// itemPending stands in for an exchange in flight and is removed, not
	// edited, when it settles.
	itemPending
)

type item struct {
	kind   itemKind
	text   string
	handle string
	reply  exchange.Reply
}

// Model is the root bubbletea model.
type Model struct {
	ctx      context.Context
	session  Session
	strategy capture.Strategy

	items   []item
	mode    exchange.Mode
	lang    string
	playing string

	recording       bool
	pending         bool
	playbackEnabled bool

	errorMessage string
	errorSeq     int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

func New(ctx context.Context, s Session, strategy capture.Strategy) Model {
	in := textinput.New()
	in.Placeholder = "Type a message, or a file path and ctrl+o"
	in.Prompt = "› "
	in.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return Model{
		ctx:             ctx,
		session:         s,
		strategy:        strategy,
		mode:            exchange.ModeSummary,
		playbackEnabled: true,
		input:           in,
		viewport:        viewport.New(80, 20),
		spinner:         sp,
	}
}

// Init boots the session off the event loop; its output arrives as messages.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.do(func(ctx context.Context) error {
		m.session.Boot(ctx)
		return nil
	}))
}

// do runs fn as a command. Failures are reported by the session through
// the view, so the command itself yields no message.
func (m Model) do(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_ = fn(ctx)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-chrome)
		m.refresh()
		return m, nil

	case UserMsg:
		m.items = append(m.items, item{kind: itemUser, text: msg.Text})
		m.refresh()
		return m, nil

	case ReplyMsg:
		m.items = append(m.items, item{kind: itemReply, handle: msg.Handle, reply: msg.Reply})
		m.refresh()
		return m, nil

	case PendingMsg:
		m.pending = msg.On
		m.items = withoutPending(m.items)
		if m.pending {
			m.items = append(m.items, item{kind: itemPending})
			m.refresh()
			return m, m.spinner.Tick
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case ClearConversationMsg:
		m.items = nil
		m.playing = ""
		m.refresh()
		return m, nil

	case ModeMsg:
		m.mode = msg.Mode
		m.refresh()
		return m, nil

	case FocusMsg:
		cmd := m.input.Focus()
		return m, cmd

	case InputTextMsg:
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
		return m, nil

	case LanguageMsg:
		m.lang = msg.Lang
		return m, nil

	case RecordingMsg:
		m.recording = msg.On
		return m, nil

	case PlaybackEnabledMsg:
		m.playbackEnabled = msg.Enabled
		m.refresh()
		return m, nil

	case PlayingMsg:
		if msg.Playing {
			m.playing = msg.Handle
		} else if m.playing == msg.Handle {
			m.playing = ""
		}
		m.refresh()
		return m, nil

	case ErrorMsg:
		m.errorSeq++
		m.errorMessage = msg.Err.Error()
		seq := m.errorSeq
		return m, tea.Tick(errorTTL, func(time.Time) tea.Msg {
			return clearErrorMsg{seq: seq}
		})

	case clearErrorMsg:
		if msg.seq == m.errorSeq {
			m.errorMessage = ""
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeySend:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.do(func(ctx context.Context) error {
			return m.session.SendText(ctx, text)
		})

	case KeyUpload:
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		m.input.Reset()
		return m, m.do(func(ctx context.Context) error {
			return m.session.UploadFile(ctx, path)
		})

	case KeyRecord:
		if m.strategy == capture.StrategyUnavailable {
			return m, nil
		}
		return m, m.do(m.session.ToggleCapture)

	case KeyMode:
		return m, m.do(func(context.Context) error {
			m.session.ToggleMode()
			return nil
		})

	case KeyLanguage:
		return m, m.do(func(context.Context) error {
			m.session.CycleTargetLanguage()
			return nil
		})

	case KeySpeak:
		it, ok := m.latestSpeakable()
		if !ok || !m.playbackEnabled {
			return m, nil
		}
		return m, m.do(func(ctx context.Context) error {
			return m.session.Speak(ctx, it.handle, it.reply.Speakable())
		})

	case KeyClear:
		return m, m.do(m.session.Clear)

	case KeyUp, KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func withoutPending(items []item) []item {
	kept := make([]item, 0, len(items))
	for _, it := range items {
		if it.kind != itemPending {
			kept = append(kept, it)
		}
	}
	return kept
}

func (m Model) latestSpeakable() (item, bool) {
	for i := len(m.items) - 1; i >= 0; i-- {
		it := m.items[i]
		if it.kind == itemReply && it.reply.Speakable() != "" {
			return it, true
		}
	}
	return item{}, false
}

// refresh re-renders the conversation into the viewport and follows the tail.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	if len(m.items) == 0 {
		return DimStyle.Render("  No messages yet. Type below and press enter.")
	}

	width := max(20, m.viewport.Width-4)
	body := lipgloss.NewStyle().Width(width)

	var blocks []string
	for _, it := range m.items {
		switch it.kind {
		case itemUser:
			blocks = append(blocks, UserLabelStyle.Render("You")+"\n"+body.Render(it.text))
		case itemReply:
			blocks = append(blocks, m.renderReply(it, body))
		case itemPending:
			blocks = append(blocks, m.spinner.View()+DimStyle.Render(" waiting for reply..."))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderReply(it item, body lipgloss.Style) string {
	labelStyle := SummaryLabelStyle
	if m.mode == exchange.ModeOriginal {
		labelStyle = OriginalLabelStyle
	}
	head := labelStyle.Render(exchange.Label(m.mode))
	if lang := it.reply.DetectedLanguage; lang != "" {
		head += DimStyle.Render(" [" + lang + "]")
	}
	switch {
	case it.handle != "" && it.handle == m.playing:
		head += "  " + PlayingStyle.Render("▶ playing")
	case it.reply.Speakable() != "" && m.playbackEnabled:
		head += "  " + SpeakableStyle.Render("♪ ctrl+p")
	}

	lines := []string{head, body.Render(it.reply.SummarizedText)}
	if tr := exchange.Translation(it.reply); tr != "" {
		lines = append(lines, TranslationStyle.Render("→ ")+body.Render(tr))
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	divider := DividerStyle.Render(strings.Repeat("─", max(1, m.width)))

	sections := []string{
		m.renderHeader(),
		divider,
		m.viewport.View(),
		divider,
		m.input.View(),
	}
	if m.errorMessage != "" {
		sections = append(sections, ErrorStyle.Render("Error: ")+ErrorTextStyle.Render(m.errorMessage))
	} else {
		sections = append(sections, m.renderFooter())
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	parts := []string{TitleStyle.Render("TWIN TALK")}

	if m.recording {
		parts = append(parts, RecordingDotStyle.Render("● REC"))
	} else if m.strategy != capture.StrategyUnavailable {
		parts = append(parts, IdleDotStyle.Render("○ mic:"+m.strategy.String()))
	}

	parts = append(parts, StatusStyle.Render("mode:"+string(m.mode)))
	if m.lang != "" {
		parts = append(parts, StatusStyle.Render("to:"+m.lang))
	}
	if !m.playbackEnabled {
		parts = append(parts, PlayingStyle.Render("♪ busy"))
	}
	if m.pending {
		parts = append(parts, m.spinner.View()+DimStyle.Render(" waiting"))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return FooterKeyStyle.Render(k) + FooterDescStyle.Render(" "+desc)
	}

	parts := []string{key("enter", "Send")}
	if m.strategy != capture.StrategyUnavailable {
		if m.recording {
			parts = append(parts, key("^r", "Stop"))
		} else {
			parts = append(parts, key("^r", "Record"))
		}
	}
	parts = append(parts,
		key("^o", "Upload"),
		key("^t", "Mode"),
		key("tab", "Lang"),
		key("^p", "Speak"),
		key("^l", "Clear"),
		key("^c", "Quit"),
	)
	return strings.Join(parts, "  ")
}
