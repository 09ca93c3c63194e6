package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/events"
	"github.com/tinoosan/roombook/internal/roombook"
	"github.com/tinoosan/roombook/internal/validate"
)

// Repo defines read operations needed by the service.
type Repo interface {
	SlotFree(ctx context.Context, room roombook.Room, date roombook.Date) (bool, error)
	ReservationsByOwner(ctx context.Context, owner string) ([]roombook.Reservation, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	// CreateReservation must fail with errs.ErrSlotTaken when the (room, date)
	// pair is already reserved, enforced by the store itself.
	CreateReservation(ctx context.Context, r roombook.Reservation) (roombook.Reservation, error)
}

// Service books rooms and lists an owner's reservations.
type Service interface {
	Book(ctx context.Context, owner string, room int, date string) (roombook.Reservation, error)
	ListByOwner(ctx context.Context, owner string) ([]roombook.Reservation, error)
}

type service struct {
	repo   Repo
	writer Writer
	pub    events.Publisher
	log    *slog.Logger
}

func New(repo Repo, writer Writer, pub events.Publisher, logger *slog.Logger) Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &service{repo: repo, writer: writer, pub: pub, log: logger}
}

// Book runs one booking attempt through its gates in order: session, room,
// date, conflict, commit. A single conflict observation is final; there are
// no retries.
func (s *service) Book(ctx context.Context, owner string, room int, date string) (roombook.Reservation, error) {
	res, err := s.book(ctx, owner, room, date)
	bookingAttempts.WithLabelValues(errs.Code(err)).Inc()
	return res, err
}

func (s *service) book(ctx context.Context, owner string, room int, date string) (roombook.Reservation, error) {
	if owner == "" {
		return roombook.Reservation{}, errs.ErrUnauthenticated
	}
	r, err := validate.Room(room)
	if err != nil {
		return roombook.Reservation{}, err
	}
	d, err := validate.Date(date)
	if err != nil {
		return roombook.Reservation{}, err
	}
	free, err := s.repo.SlotFree(ctx, r, d)
	if err != nil {
		return roombook.Reservation{}, err
	}
	if !free {
		return roombook.Reservation{}, slotTaken(r, d)
	}
	created, err := s.writer.CreateReservation(ctx, roombook.Reservation{
		ID:        uuid.New(),
		Room:      r,
		Owner:     owner,
		Date:      d,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, errs.ErrSlotTaken) {
		// lost the race between SlotFree and the insert
		return roombook.Reservation{}, slotTaken(r, d)
	}
	if err != nil {
		return roombook.Reservation{}, err
	}
	s.log.InfoContext(ctx, "reservation committed", "reservation_id", created.ID.String(), "room", int(created.Room), "date", created.Date.String(), "owner", created.Owner)
	if err := s.pub.Publish(ctx, events.SubjectReservationCreated, events.ReservationCreated{
		ReservationID: created.ID.String(),
		Room:          int(created.Room),
		Date:          created.Date.String(),
		Owner:         created.Owner,
		CreatedAt:     created.CreatedAt,
	}); err != nil {
		s.log.WarnContext(ctx, "publish reservation event failed", "reservation_id", created.ID.String(), "err", err)
	}
	return created, nil
}

func (s *service) ListByOwner(ctx context.Context, owner string) ([]roombook.Reservation, error) {
	if owner == "" {
		return nil, errs.ErrUnauthenticated
	}
	return s.repo.ReservationsByOwner(ctx, owner)
}

func slotTaken(r roombook.Room, d roombook.Date) error {
	return fmt.Errorf("%w: room %d is already reserved on %s", errs.ErrSlotTaken, r, d)
}
