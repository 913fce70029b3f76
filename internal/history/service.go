package history

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Log is the conversation log bound to one key.
// Writes are read-modify-write; concurrent writers on the same key are last-writer-wins.
type Log struct {
	store Store
	key   string
	log   *zap.Logger
}

func NewLog(store Store, key string, log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{store: store, key: key, log: log.With(zap.String("log_key", key))}
}

func (l *Log) Key() string { return l.key }

// Append adds entries in order and trims the log to MaxEntries.
func (l *Log) Append(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	raw, found, err := l.store.Load(ctx, l.key)
	if err != nil {
		return fmt.Errorf("load log: %w", err)
	}
	current := l.decode(raw, found)
	current = append(current, entries...)
	if over := len(current) - MaxEntries; over > 0 {
		current = current[over:]
	}

	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	return l.store.Save(ctx, l.key, data)
}

// Restore returns the persisted entries; missing or corrupt data reads as empty.
func (l *Log) Restore(ctx context.Context) []Entry {
	raw, found, err := l.store.Load(ctx, l.key)
	if err != nil {
		l.log.Warn("log read failed, treating as empty", zap.Error(err))
		return []Entry{}
	}
	return l.decode(raw, found)
}

// decode reads a persisted payload; malformed data reads as empty.
func (l *Log) decode(raw []byte, found bool) []Entry {
	if !found {
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.log.Warn("log corrupt, treating as empty", zap.Error(err))
		return []Entry{}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries
}

func (l *Log) Clear(ctx context.Context) error {
	return l.store.Delete(ctx, l.key)
}
