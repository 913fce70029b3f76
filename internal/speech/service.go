package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxSynthesisChars is the longest text accepted for synthesis.
const MaxSynthesisChars = 4000

var (
	ErrEmptyText = errors.New("empty text")
	ErrTooLong   = errors.New("too long")
)

// === one service for both directions ===

type Service struct {
	stt STTClient
	tts TTSClient
}

func NewService(stt STTClient, tts TTSClient) *Service {
	return &Service{
		stt: stt,
		tts: tts,
	}
}

func (s *Service) Transcribe(ctx context.Context, name string, audio io.Reader) (string, error) {
	return s.stt.Transcribe(ctx, name, audio)
}

// Synthesize validates text and returns mp3 audio.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxSynthesisChars {
		return nil, ErrTooLong
	}
	return s.tts.Synthesize(ctx, text)
}
