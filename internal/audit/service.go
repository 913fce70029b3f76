package audit

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"
)

// maxInfo bounds the stored info text, in runes.
const maxInfo = 500

// Service writes audit events to the log and, when a repo is set, to Postgres.
// Recording never fails the request.
type Service struct {
	repo Repo
	log  *logger.ZapLogger
	now  func() time.Time
}

func NewService(repo Repo, log *logger.ZapLogger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func (s *Service) Record(ctx context.Context, ip string, action Action, info string) {
	if ip == "" {
		ip = "unknown"
	}
	if utf8.RuneCountInString(info) > maxInfo {
		info = string([]rune(info)[:maxInfo])
	}

	e := Event{
		ID:     uuid.New(),
		At:     s.now(),
		IP:     ip,
		Action: action,
		Info:   info,
	}

	level := "info"
	if action == ActionWhisperErr || action == ActionGPTErr || action == ActionTTSErr {
		level = "warn"
	}
	s.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf("IP=%s | %s | %s", e.IP, e.Action, e.Info),
		Service: "audit",
	})

	if s.repo == nil {
		return
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "audit insert failed",
			Error:   err,
			Service: "audit",
		})
	}
}
