package tui

import (
	"sync"

	"github.com/Vovarama1992/twin_talk/internal/exchange"
	tea "github.com/charmbracelet/bubbletea"
)

// Bridge implements session.View by forwarding every call as a message to
// the running program. Calls made before Attach are dropped.
//
// Program.Send blocks until the event loop receives the message, so Bridge
// must only be called from outside Update, i.e. from commands.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) emit(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) RenderUser(text string) { b.emit(UserMsg{Text: text}) }

func (b *Bridge) RenderReply(handle string, reply exchange.Reply) {
	b.emit(ReplyMsg{Handle: handle, Reply: reply})
}

func (b *Bridge) SetPending(on bool)            { b.emit(PendingMsg{On: on}) }
func (b *Bridge) ClearConversation()            { b.emit(ClearConversationMsg{}) }
func (b *Bridge) ApplyMode(mode exchange.Mode)  { b.emit(ModeMsg{Mode: mode}) }
func (b *Bridge) FocusInput()                   { b.emit(FocusMsg{}) }
func (b *Bridge) SetInputText(text string)      { b.emit(InputTextMsg{Text: text}) }
func (b *Bridge) SetTargetLanguage(lang string) { b.emit(LanguageMsg{Lang: lang}) }
func (b *Bridge) SetRecording(on bool)          { b.emit(RecordingMsg{On: on}) }

func (b *Bridge) SetPlaybackEnabled(enabled bool) {
	b.emit(PlaybackEnabledMsg{Enabled: enabled})
}

func (b *Bridge) SetPlaying(handle string, playing bool) {
	b.emit(PlayingMsg{Handle: handle, Playing: playing})
}

func (b *Bridge) Notify(err error) {
	if err != nil {
		b.emit(ErrorMsg{Err: err})
	}
}
