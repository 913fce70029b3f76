package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Service resolves the identity once per process and never fails.
type Service struct {
	resolver Resolver
	log      *zap.Logger

	once     sync.Once
	identity string
}

func NewService(resolver Resolver, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{resolver: resolver, log: log}
}

// Identity returns the cached identity, resolving it on first use.
// A failed attempt yields Unknown for the rest of the process.
func (s *Service) Identity(ctx context.Context) string {
	s.once.Do(func() {
		id, err := s.resolver.Resolve(ctx)
		if err != nil {
			s.log.Warn("identity resolution failed, using sentinel", zap.Error(err))
			id = Unknown
		}
		s.identity = id
	})
	return s.identity
}

// LogKey returns the conversation log key for this process.
func (s *Service) LogKey(ctx context.Context) string {
	return LogKey(s.Identity(ctx))
}
