package postgres

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

// mustOpen opens the store, applies migrations and empties both tables.
func mustOpen(t *testing.T) *Store {
	t.Helper()
	dsn := getTestDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))
	_, err = s.pool.Exec(ctx, `truncate table reservations, accounts`)
	require.NoError(t, err)
	return s
}

func newReservation(room roombook.Room, owner string, d roombook.Date, at time.Time) roombook.Reservation {
	return roombook.Reservation{ID: uuid.New(), Room: room, Owner: owner, Date: d, CreatedAt: at}
}

func TestStore_Accounts(t *testing.T) {
	s := mustOpen(t)
	ctx := context.Background()

	ok, err := s.AccountExists(ctx, "validuser")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.AccountByID(ctx, "validuser")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err = s.CreateAccount(ctx, roombook.Account{ID: "validuser", PasswordHash: "h1", CreatedAt: now})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, roombook.Account{ID: "validuser", PasswordHash: "h2", CreatedAt: now})
	assert.ErrorIs(t, err, errs.ErrDuplicateAccount)

	got, err := s.AccountByID(ctx, "validuser")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestStore_Reservations(t *testing.T) {
	s := mustOpen(t)
	ctx := context.Background()
	may1 := roombook.Date{Year: 2024, Month: time.May, Day: 1}
	may2 := roombook.Date{Year: 2024, Month: time.May, Day: 2}
	base := time.Now().UTC()

	free, err := s.SlotFree(ctx, 2, may1)
	require.NoError(t, err)
	assert.True(t, free)

	_, err = s.CreateReservation(ctx, newReservation(2, "alice", may1, base))
	require.NoError(t, err)
	_, err = s.CreateReservation(ctx, newReservation(2, "bob", may1, base.Add(time.Second)))
	assert.ErrorIs(t, err, errs.ErrSlotTaken)

	free, err = s.SlotFree(ctx, 2, may1)
	require.NoError(t, err)
	assert.False(t, free)

	_, err = s.CreateReservation(ctx, newReservation(2, "alice", may2, base.Add(2*time.Second)))
	require.NoError(t, err)

	list, err := s.ReservationsByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, may1, list[0].Date)
	assert.Equal(t, may2, list[1].Date)
	assert.Equal(t, roombook.Room(2), list[1].Room)

	none, err := s.ReservationsByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ConcurrentBookingSameSlot(t *testing.T) {
	s := mustOpen(t)
	ctx := context.Background()
	d := roombook.Date{Year: 2025, Month: time.January, Day: 15}

	var wins atomic.Int32
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := s.CreateReservation(ctx, newReservation(4, "racer", d, time.Now().UTC()))
			if err == nil {
				wins.Add(1)
				return nil
			}
			if errors.Is(err, errs.ErrSlotTaken) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
}

func TestStore_ClosedPoolIsUnavailable(t *testing.T) {
	s := mustOpen(t)
	s.Close()
	_, err := s.AccountExists(context.Background(), "validuser")
	assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
}
