package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Vovarama1992/twin_talk/internal/exchange"
	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var ErrNoJSON = errors.New("JSON not found in GPT response")

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

type TranslatorService struct {
	client ChatClient
	log    *zap.Logger
}

func NewTranslatorService(client ChatClient, log *zap.Logger) *TranslatorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TranslatorService{client: client, log: log.Named("ai")}
}

// analyzeOpenAIError gives a short reason for a failed completion.
func analyzeOpenAIError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return "invalid OpenAI API key"
		case 404:
			return "model not found"
		case 429:
			return "OpenAI rate limit exceeded"
		case 400:
			return "bad request to OpenAI"
		case 500, 502, 503:
			return "OpenAI internal error"
		}
	}
	return err.Error()
}

func (s *TranslatorService) Translate(ctx context.Context, text, targetLang string, mode exchange.Mode) (exchange.Reply, error) {
	input, err := json.Marshal(map[string]string{
		"text":        text,
		"target_lang": targetLang,
	})
	if err != nil {
		return exchange.Reply{}, err
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: PromptFor(mode)},
		{Role: openai.ChatMessageRoleUser, Content: string(input)},
	}

	content, err := s.client.GetCompletion(ctx, messages)
	if err != nil {
		s.log.Warn("completion failed", zap.Error(err), zap.String("mode", string(mode)))
		return exchange.Reply{}, fmt.Errorf("gpt: %s: %w", analyzeOpenAIError(err), err)
	}

	reply, err := ParseReply(content)
	if err != nil {
		s.log.Warn("unparseable completion", zap.Error(err), zap.String("content", truncate(content, 200)))
		return exchange.Reply{}, err
	}
	if reply.OriginalText == "" {
		reply.OriginalText = text
	}
	return reply, nil
}

// ParseReply extracts the outermost JSON object from a completion.
func ParseReply(content string) (exchange.Reply, error) {
	raw := jsonObject.FindString(content)
	if raw == "" {
		return exchange.Reply{}, ErrNoJSON
	}

	var reply exchange.Reply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return exchange.Reply{}, fmt.Errorf("decode GPT JSON: %w", err)
	}
	reply.DetectedLanguage = strings.ToLower(strings.TrimSpace(reply.DetectedLanguage))
	return reply, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
