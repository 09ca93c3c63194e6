// Package session binds bearer tokens to account ids.
//
// A token is an HS256 JWT whose subject is the account id and whose jti is the
// session id. The session id must also be live in the Store, so logout and
// expiry take effect even though the token itself is still well-formed.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tinoosan/roombook/internal/errs"
)

// Session is the per-login binding from a caller to an account id.
type Session struct {
	ID        uuid.UUID
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Store keeps the set of live session ids.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues, resolves and revokes sessions.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager signing tokens with secret.
func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: secret, ttl: ttl, now: time.Now}
}

// Issue creates a session for accountID and returns it with its bearer token.
func (m *Manager) Issue(ctx context.Context, accountID string) (Session, string, error) {
	now := m.now().UTC()
	s := Session{ID: uuid.New(), AccountID: accountID, IssuedAt: now, ExpiresAt: now.Add(m.ttl)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID.String(),
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			NotBefore: jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign session token: %w", err)
	}
	if err := m.store.Save(ctx, s); err != nil {
		return Session{}, "", err
	}
	return s, signed, nil
}

// Resolve returns the live session for token. Any malformed, expired or
// revoked token yields errs.ErrUnauthenticated.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return Session{}, err
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return Session{}, errs.ErrUnauthenticated
	}
	s, err := m.store.Get(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return Session{}, errs.ErrUnauthenticated
	}
	if err != nil {
		return Session{}, err
	}
	if s.AccountID != claims.Subject || !m.now().Before(s.ExpiresAt) {
		return Session{}, errs.ErrUnauthenticated
	}
	return s, nil
}

// Revoke ends the session behind token. Revoking an unknown or already
// revoked session is not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return errs.ErrUnauthenticated
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, errs.ErrUnauthenticated
	}
	return claims, nil
}

// Context plumbing: the HTTP layer stores the resolved session on the request.

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
