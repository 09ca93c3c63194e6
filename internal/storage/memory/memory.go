package memory

// Package memory provides a simple in-memory implementation used for development and tests.
// Uniqueness of account ids and (room, date) slots is enforced by map inserts under the lock,
// so the check and the write are one critical section.
import (
	"context"
	"sync"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
)

// Store is an in-memory implementation of the account and reservation stores.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]roombook.Account
	reservations map[roombook.Slot]roombook.Reservation
	// Per-owner index in insertion order.
	slotsByOwner map[string][]roombook.Slot
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:     make(map[string]roombook.Account),
		reservations: make(map[roombook.Slot]roombook.Reservation),
		slotsByOwner: make(map[string][]roombook.Slot),
	}
}

// Reset drops all data.
func (s *Store) Reset() {
	s.mu.Lock()
	s.accounts = map[string]roombook.Account{}
	s.reservations = map[roombook.Slot]roombook.Reservation{}
	s.slotsByOwner = map[string][]roombook.Slot{}
	s.mu.Unlock()
}

// Ready always succeeds.
func (s *Store) Ready(context.Context) error { return nil }

// AccountExists implements account.Repo.
func (s *Store) AccountExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok, nil
}

// AccountByID implements account.Repo.
func (s *Store) AccountByID(_ context.Context, id string) (roombook.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return roombook.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// CreateAccount implements account.Writer.
func (s *Store) CreateAccount(_ context.Context, a roombook.Account) (roombook.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return roombook.Account{}, errs.ErrDuplicateAccount
	}
	s.accounts[a.ID] = a
	return a, nil
}

// SlotFree implements booking.Repo.
func (s *Store) SlotFree(_ context.Context, room roombook.Room, date roombook.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.reservations[roombook.Slot{Room: room, Date: date}]
	return !taken, nil
}

// CreateReservation implements booking.Writer.
func (s *Store) CreateReservation(_ context.Context, r roombook.Reservation) (roombook.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := r.Slot()
	if _, taken := s.reservations[slot]; taken {
		return roombook.Reservation{}, errs.ErrSlotTaken
	}
	s.reservations[slot] = r
	s.slotsByOwner[r.Owner] = append(s.slotsByOwner[r.Owner], slot)
	return r, nil
}

// ReservationsByOwner implements booking.Repo. The result is a copy.
func (s *Store) ReservationsByOwner(_ context.Context, owner string) ([]roombook.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := s.slotsByOwner[owner]
	out := make([]roombook.Reservation, 0, len(slots))
	for _, slot := range slots {
		if r, ok := s.reservations[slot]; ok && r.Owner == owner {
			out = append(out, r)
		}
	}
	return out, nil
}
