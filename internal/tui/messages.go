package tui

import "github.com/Vovarama1992/twin_talk/internal/exchange"

// UserMsg appends a user bubble.
type UserMsg struct {
	Text string
}

// ReplyMsg appends an AI bubble.
type ReplyMsg struct {
	Handle string
	Reply  exchange.Reply
}

// PendingMsg toggles the waiting indicator.
type PendingMsg struct {
	On bool
}

// ClearConversationMsg empties the conversation.
type ClearConversationMsg struct{}

// ModeMsg restyles summary labels.
type ModeMsg struct {
	Mode exchange.Mode
}

// FocusMsg focuses the text input.
type FocusMsg struct{}

// InputTextMsg replaces the text input content.
type InputTextMsg struct {
	Text string
}

// LanguageMsg updates the target language selector.
type LanguageMsg struct {
	Lang string
}

// RecordingMsg updates the recording indicator.
type RecordingMsg struct {
	On bool
}

// PlaybackEnabledMsg enables or disables all speak controls.
type PlaybackEnabledMsg struct {
	Enabled bool
}

// PlayingMsg marks a reply as playing or not.
type PlayingMsg struct {
	Handle  string
	Playing bool
}

// ErrorMsg shows a transient error.
type ErrorMsg struct {
	Err error
}

// clearErrorMsg clears the error bar if no newer error arrived since.
type clearErrorMsg struct {
	seq int
}
