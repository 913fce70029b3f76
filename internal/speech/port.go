package speech

import (
	"context"
	"io"
)

type STTClient interface {
	Transcribe(ctx context.Context, name string, audio io.Reader) (string, error) // audio → text
}

type TTSClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error) // text → mp3
}
