// Package session composes identity, the conversation log, capture,
// playback and the exchange into the operations the view triggers.
package session

import (
	"github.com/Vovarama1992/twin_talk/internal/capture"
	"github.com/Vovarama1992/twin_talk/internal/exchange"
	"github.com/Vovarama1992/twin_talk/internal/history"
	"github.com/Vovarama1992/twin_talk/internal/identity"
	"github.com/Vovarama1992/twin_talk/internal/playback"
	"go.uber.org/zap"
)

// View renders session output. Implementations must be safe for use
// from multiple goroutines.
type View interface {
	capture.Sink
	playback.Controls

	RenderUser(text string)
	// RenderReply shows a reply; handle identifies it for playback indicators.
	RenderReply(handle string, reply exchange.Reply)
	SetPending(on bool)
	ClearConversation()
	ApplyMode(mode exchange.Mode)
	FocusInput()
	SetTargetLanguage(lang string)
}

type Deps struct {
	Identity    identity.Resolver
	Store       history.Store
	Exchange    exchange.Client
	Synthesizer playback.Synthesizer
	Player      playback.Player
	Platform    capture.Platform
	Log         *zap.Logger
}
