package bootstrap

import "context"

// AuditLog is an operational event about the process itself, not about a
// leave request. Request history lives in the audit package.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
