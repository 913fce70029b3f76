package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionView       Action = "VIEW"
	ActionInput      Action = "INPUT"
	ActionWhisperErr Action = "WHISPER_ERR"
	ActionGPTErr     Action = "GPT_ERR"
	ActionTTSErr     Action = "TTS_ERR"
)

// Event is one audited request.
type Event struct {
	ID     uuid.UUID
	At     time.Time
	IP     string
	Action Action
	Info   string
}

// Repo persists audit events.
type Repo interface {
	Insert(ctx context.Context, e Event) error
}
