package v1

import (
	"context"

	"github.com/tinoosan/roombook/internal/session"
)

// SessionResolver maps a bearer token to its live session.
type SessionResolver interface {
	// Resolve fails with errs.ErrUnauthenticated for unknown, expired or revoked tokens.
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// ReadyChecker is implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
