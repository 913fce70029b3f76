// Package history keeps the bounded, identity-namespaced conversation log.
package history

import (
	"context"

	"github.com/Vovarama1992/twin_talk/internal/exchange"
)

// MaxEntries bounds the persisted log; older entries are evicted first.
const MaxEntries = 200

type Kind string

const (
	KindUser Kind = "user"
	KindAI   Kind = "ai"
)

// Entry is either a user utterance or an AI reply.
type Entry struct {
	Kind  Kind            `json:"type"`
	Text  string          `json:"text,omitempty"`
	Reply *exchange.Reply `json:"data,omitempty"`
}

func UserEntry(text string) Entry {
	return Entry{Kind: KindUser, Text: text}
}

func AIEntry(reply exchange.Reply) Entry {
	return Entry{Kind: KindAI, Reply: &reply}
}

// Store is the client-local key/value persistence behind the log.
// Load reports found=false for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
