package account_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
	"github.com/tinoosan/roombook/internal/service/account"
	"github.com/tinoosan/roombook/internal/session"
	"github.com/tinoosan/roombook/internal/storage/memory"
)

var cheapHash = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newService(t *testing.T) (account.Service, *memory.Store, *session.Manager) {
	t.Helper()
	store := memory.New()
	sessions := session.NewManager(session.NewMemoryStore(), []byte("k"), time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return account.New(store, store, sessions, log, account.WithHashParams(cheapHash)), store, sessions
}

// countingRepo records store reads so tests can assert none happened.
type countingRepo struct {
	account.Repo
	calls atomic.Int32
}

func (c *countingRepo) AccountExists(ctx context.Context, id string) (bool, error) {
	c.calls.Add(1)
	return c.Repo.AccountExists(ctx, id)
}

func (c *countingRepo) AccountByID(ctx context.Context, id string) (roombook.Account, error) {
	c.calls.Add(1)
	return c.Repo.AccountByID(ctx, id)
}

func TestSignUp(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ab cd", "Pass123!")
	assert.ErrorIs(t, err, errs.ErrInvalidIdentifier)

	_, err = svc.SignUp(ctx, "validuser", "Pass#123")
	assert.ErrorIs(t, err, errs.ErrInvalidPassword)

	acc, err := svc.SignUp(ctx, "validuser", "Pass123!")
	require.NoError(t, err)
	assert.Equal(t, "validuser", acc.ID)

	stored, err := store.AccountByID(ctx, "validuser")
	require.NoError(t, err)
	assert.NotEqual(t, "Pass123!", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))

	_, err = svc.SignUp(ctx, "validuser", "anotherPw")
	assert.ErrorIs(t, err, errs.ErrDuplicateAccount)
}

func TestSignUp_InvalidInputSkipsStore(t *testing.T) {
	store := memory.New()
	repo := &countingRepo{Repo: store}
	svc := account.New(repo, store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), account.WithHashParams(cheapHash))

	for _, tc := range []struct{ id, pw string }{
		{"", "Pass123!"},
		{"sixteencharacter", "Pass123!"},
		{"user_1", "Pass123!"},
		{"validuser", ""},
		{"validuser", strings.Repeat("a", 31)},
	} {
		_, err := svc.SignUp(context.Background(), tc.id, tc.pw)
		assert.Error(t, err, tc)
	}
	assert.Zero(t, repo.calls.Load())
}

func TestSignUp_ConcurrentSameID(t *testing.T) {
	svc, _, _ := newService(t)
	var wins atomic.Int32
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := svc.SignUp(context.Background(), "racer", "Pass123!")
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, errs.ErrDuplicateAccount):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
}

func TestVerifyAndLogin(t *testing.T) {
	svc, _, sessions := newService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "validuser", "Pass123!")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "validuser", "Pass123!")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Verify(ctx, "validuser", "pass123!")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = svc.Verify(ctx, "VALIDUSER", "Pass123!")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = svc.Login(ctx, "validuser", "wrong")
	assert.ErrorIs(t, err, errs.ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "ghost", "Pass123!")
	assert.ErrorIs(t, err, errs.ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, errs.ErrAuthenticationFailed)

	sess, token, err := svc.Login(ctx, "validuser", "Pass123!")
	require.NoError(t, err)
	assert.Equal(t, "validuser", sess.AccountID)

	got, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestLogin_EmptyFieldsSkipStore(t *testing.T) {
	store := memory.New()
	repo := &countingRepo{Repo: store}
	svc := account.New(repo, store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, _, err := svc.Login(context.Background(), "validuser", "")
	assert.ErrorIs(t, err, errs.ErrAuthenticationFailed)
	assert.Zero(t, repo.calls.Load())
}

func TestVerify_UnknownIDStillComparesHash(t *testing.T) {
	store := memory.New()
	var compared atomic.Int32
	var hashes []string
	compare := func(password, hash string) (bool, error) {
		compared.Add(1)
		hashes = append(hashes, hash)
		return argon2id.ComparePasswordAndHash(password, hash)
	}
	svc := account.New(store, store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)),
		account.WithHashParams(cheapHash), account.WithPasswordComparer(compare))
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "validuser", "Pass123!")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, "nosuchuser", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 1, compared.Load())

	ok, err = svc.Verify(ctx, "validuser", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 2, compared.Load())

	// unknown ids reuse one hash built with the service's parameters
	_, err = svc.Verify(ctx, "another", "Pass123!")
	require.NoError(t, err)
	require.Len(t, hashes, 3)
	assert.Equal(t, hashes[0], hashes[2])
	assert.True(t, strings.HasPrefix(hashes[0], "$argon2id$v=19$m=1024,t=1,p=1$"))

	_, _, err = svc.Login(ctx, "nosuchuser", "wrong")
	assert.ErrorIs(t, err, errs.ErrAuthenticationFailed)
	assert.EqualValues(t, 4, compared.Load())
}
