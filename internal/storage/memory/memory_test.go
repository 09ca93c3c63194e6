package memory

import (
	"context"
	"errors"
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

var may1 = roombook.Date{Year: 2024, Month: time.May, Day: 1}

func reservation(room roombook.Room, owner string, d roombook.Date) roombook.Reservation {
	return roombook.Reservation{ID: uuid.New(), Room: room, Owner: owner, Date: d, CreatedAt: time.Now().UTC()}
}

func TestStore_Accounts(t *testing.T) {
	ctx := context.Background()
	s := New()

	ok, err := s.AccountExists(ctx, "validuser")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.AccountByID(ctx, "validuser")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = s.CreateAccount(ctx, roombook.Account{ID: "validuser", PasswordHash: "h1"})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, roombook.Account{ID: "validuser", PasswordHash: "h2"})
	assert.ErrorIs(t, err, errs.ErrDuplicateAccount)

	got, err := s.AccountByID(ctx, "validuser")
	require.NoError(t, err)
	assert.Equal(t, "h1", got.PasswordHash)

	// ids are case-sensitive
	ok, err = s.AccountExists(ctx, "ValidUser")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Reservations(t *testing.T) {
	ctx := context.Background()
	s := New()

	free, err := s.SlotFree(ctx, 2, may1)
	require.NoError(t, err)
	assert.True(t, free)

	_, err = s.CreateReservation(ctx, reservation(2, "alice", may1))
	require.NoError(t, err)
	_, err = s.CreateReservation(ctx, reservation(2, "bob", may1))
	assert.ErrorIs(t, err, errs.ErrSlotTaken)

	free, err = s.SlotFree(ctx, 2, may1)
	require.NoError(t, err)
	assert.False(t, free)

	// same room, other date; other room, same date
	may2 := roombook.Date{Year: 2024, Month: time.May, Day: 2}
	_, err = s.CreateReservation(ctx, reservation(2, "alice", may2))
	require.NoError(t, err)
	_, err = s.CreateReservation(ctx, reservation(3, "bob", may1))
	require.NoError(t, err)

	alice, err := s.ReservationsByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, may1, alice[0].Date)
	assert.Equal(t, may2, alice[1].Date)

	// snapshot, not a live view
	alice[0].Owner = "mallory"
	again, err := s.ReservationsByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", again[0].Owner)

	none, err := s.ReservationsByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ConcurrentBookingSameSlot(t *testing.T) {
	ctx := context.Background()
	s := New()

	const attempts = 64
	var wins, taken atomic.Int32
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		owner := "owner" + string(rune('A'+i%26))
		g.Go(func() error {
			_, err := s.CreateReservation(ctx, reservation(1, owner, may1))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, errs.ErrSlotTaken):
				taken.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, attempts-1, taken.Load())
	assert.Len(t, s.reservations, 1)
}

func TestStore_ConcurrentSignUpSameID(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wins atomic.Int32
	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			_, err := s.CreateAccount(ctx, roombook.Account{ID: "validuser"})
			if err == nil {
				wins.Add(1)
				return nil
			}
			if errors.Is(err, errs.ErrDuplicateAccount) {
				return nil
			}
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.CreateAccount(ctx, roombook.Account{ID: "a"})
	_, _ = s.CreateReservation(ctx, reservation(1, "a", may1))
	s.Reset()
	ok, _ := s.AccountExists(ctx, "a")
	assert.False(t, ok)
	free, _ := s.SlotFree(ctx, 1, may1)
	assert.True(t, free)
}
