package bootstrap

import "context"

// AuditLog is a single operational audit entry, emitted on lifecycle events
// such as server shutdown.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
