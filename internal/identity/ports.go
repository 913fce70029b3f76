package identity

import "context"

const (
	// Unknown is the identity used when resolution fails.
	Unknown = "unknown"

	Namespace = "chatHistory"
)

// SentinelKey is the log key of the sentinel identity.
var SentinelKey = LogKey(Unknown)

type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// LogKey namespaces persisted conversation state by identity.
func LogKey(identity string) string {
	if identity == "" {
		identity = Unknown
	}
	return Namespace + "-" + identity
}
