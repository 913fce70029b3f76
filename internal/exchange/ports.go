package exchange

import (
	"context"
	"errors"
	"fmt"
)

// Mode decides how the service condenses the utterance.
type Mode string

const (
	ModeSummary  Mode = "summary"
	ModeOriginal Mode = "original"
)

// DefaultLanguage is the source language the service treats as home.
const DefaultLanguage = "ja"

// Reply is the structured answer for one utterance.
// Optional fields are empty when the service had nothing to put there.
type Reply struct {
	SummarizedText   string `json:"summarized_text"`
	OriginalText     string `json:"original_text,omitempty"`
	TargetText       string `json:"target_text,omitempty"`
	JaText           string `json:"ja_text,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
	SpeakOriginal    string `json:"speak_original,omitempty"`
	SpeakTarget      string `json:"speak_target,omitempty"`
}

// Input carries exactly one of Text or Audio.
type Input struct {
	Text      string
	Audio     []byte
	AudioName string
}

var ErrInvalidInput = errors.New("exchange: exactly one of text or audio is required")

// RemoteError is an error reported by the service in its JSON body.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("service error (%d): %s", e.Status, e.Message)
}

type Client interface {
	Send(ctx context.Context, in Input, targetLanguage string, mode Mode) (Reply, error)
}
