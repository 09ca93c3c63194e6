// Package account implements sign-up and login: identifier/password rules,
// unique ids and argon2id password hashes.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
	"github.com/tinoosan/roombook/internal/session"
	"github.com/tinoosan/roombook/internal/validate"
)

type Repo interface {
	AccountExists(ctx context.Context, id string) (bool, error)
	AccountByID(ctx context.Context, id string) (roombook.Account, error)
}

type Writer interface {
	// CreateAccount must fail with errs.ErrDuplicateAccount when the id is taken,
	// enforced by the store itself.
	CreateAccount(ctx context.Context, a roombook.Account) (roombook.Account, error)
}

// Sessions issues and revokes session tokens.
type Sessions interface {
	Issue(ctx context.Context, accountID string) (session.Session, string, error)
	Revoke(ctx context.Context, token string) error
}

type Service interface {
	SignUp(ctx context.Context, id, password string) (roombook.Account, error)
	Verify(ctx context.Context, id, password string) (bool, error)
	Login(ctx context.Context, id, password string) (session.Session, string, error)
	Logout(ctx context.Context, token string) error
}

type service struct {
	repo     Repo
	writer   Writer
	sessions Sessions
	params   *argon2id.Params
	compare  func(password, hash string) (bool, error)
	log      *slog.Logger

	// dummyHash is compared against when the id is unknown so both
	// failure paths cost one argon2id comparison.
	dummyOnce sync.Once
	dummyHash string
	dummyErr  error
}

// Option tweaks a service at construction.
type Option func(*service)

// WithHashParams overrides the argon2id parameters (tests use cheap ones).
func WithHashParams(p *argon2id.Params) Option { return func(s *service) { s.params = p } }

// WithPasswordComparer replaces argon2id.ComparePasswordAndHash.
func WithPasswordComparer(fn func(password, hash string) (bool, error)) Option {
	return func(s *service) { s.compare = fn }
}

func New(repo Repo, writer Writer, sessions Sessions, logger *slog.Logger, opts ...Option) Service {
	s := &service{
		repo:     repo,
		writer:   writer,
		sessions: sessions,
		params:   argon2id.DefaultParams,
		compare:  argon2id.ComparePasswordAndHash,
		log:      logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) SignUp(ctx context.Context, id, password string) (roombook.Account, error) {
	if err := validate.Identifier(id); err != nil {
		return roombook.Account{}, err
	}
	if err := validate.Password(password); err != nil {
		return roombook.Account{}, err
	}
	exists, err := s.repo.AccountExists(ctx, id)
	if err != nil {
		return roombook.Account{}, err
	}
	if exists {
		return roombook.Account{}, fmt.Errorf("%w: id %q is already registered", errs.ErrDuplicateAccount, id)
	}
	hash, err := argon2id.CreateHash(password, s.params)
	if err != nil {
		return roombook.Account{}, fmt.Errorf("hash password: %w", err)
	}
	// The store's uniqueness constraint is authoritative: a concurrent sign-up
	// that slipped past AccountExists still fails here with ErrDuplicateAccount.
	created, err := s.writer.CreateAccount(ctx, roombook.Account{ID: id, PasswordHash: hash, CreatedAt: time.Now().UTC()})
	if err != nil {
		return roombook.Account{}, err
	}
	s.log.InfoContext(ctx, "account created", "account_id", created.ID)
	return created, nil
}

// Verify reports whether an account with exactly this id and password exists.
func (s *service) Verify(ctx context.Context, id, password string) (bool, error) {
	acc, err := s.repo.AccountByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		hash, err := s.unknownAccountHash()
		if err != nil {
			return false, err
		}
		_, _ = s.compare(password, hash)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	ok, err := s.compare(password, acc.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("compare password: %w", err)
	}
	return ok, nil
}

func (s *service) Login(ctx context.Context, id, password string) (session.Session, string, error) {
	if id == "" || password == "" {
		return session.Session{}, "", fmt.Errorf("%w: id and password are required", errs.ErrAuthenticationFailed)
	}
	ok, err := s.Verify(ctx, id, password)
	if err != nil {
		return session.Session{}, "", err
	}
	if !ok {
		return session.Session{}, "", errs.ErrAuthenticationFailed
	}
	sess, token, err := s.sessions.Issue(ctx, id)
	if err != nil {
		return session.Session{}, "", err
	}
	s.log.InfoContext(ctx, "login", "account_id", id, "session_id", sess.ID.String())
	return sess, token, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func (s *service) unknownAccountHash() (string, error) {
	s.dummyOnce.Do(func() {
		s.dummyHash, s.dummyErr = argon2id.CreateHash("unknown-account", s.params)
	})
	if s.dummyErr != nil {
		return "", fmt.Errorf("hash password: %w", s.dummyErr)
	}
	return s.dummyHash, nil
}
