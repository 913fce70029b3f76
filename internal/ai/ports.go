package ai

import (
	"context"

	"github.com/Vovarama1992/twin_talk/internal/exchange"
	openai "github.com/sashabaranov/go-openai"
)

type ChatClient interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Translator turns one utterance into a reply payload.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string, mode exchange.Mode) (exchange.Reply, error)
}
