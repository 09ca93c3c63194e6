// Package sqlite is a single-file storage backend on modernc.org/sqlite.
// The schema mirrors the Postgres one: accounts.id is the primary key and
// reservations carries UNIQUE (room, date), so constraint violations decide
// duplicate sign-ups and double bookings.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tinoosan/roombook/db"
	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
)

const dateColumnLayout = time.DateOnly

// Store wraps a database/sql handle on a sqlite file.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open opens (creating if needed) the database at path and migrates it.
// A single connection is used so writes are serialized by the pool.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
	}
	s := &Store{db: sqlDB}
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	goose.SetBaseFS(db.SQLiteMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, db.SQLiteMigrationsDir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}

func (s *Store) Ready(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.storeErr(err)
	}
	return nil
}

func (s *Store) AccountExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, s.storeErr(err)
	}
	return n > 0, nil
}

func (s *Store) AccountByID(ctx context.Context, id string) (roombook.Account, error) {
	var a roombook.Account
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash, created_at FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return roombook.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return roombook.Account{}, s.storeErr(err)
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a roombook.Account) (roombook.Account, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, password_hash, created_at) VALUES (?, ?, ?)`,
		a.ID, a.PasswordHash, a.CreatedAt.UnixNano(),
	)
	if isConstraint(err) {
		return roombook.Account{}, fmt.Errorf("%w: id %q is already registered", errs.ErrDuplicateAccount, a.ID)
	}
	if err != nil {
		return roombook.Account{}, s.storeErr(err)
	}
	return a, nil
}

func (s *Store) SlotFree(ctx context.Context, room roombook.Room, date roombook.Date) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reservations WHERE room = ? AND date = ?`, int(room), date.ISO(),
	).Scan(&n)
	if err != nil {
		return false, s.storeErr(err)
	}
	return n == 0, nil
}

func (s *Store) CreateReservation(ctx context.Context, r roombook.Reservation) (roombook.Reservation, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reservations (id, room, owner, date, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID.String(), int(r.Room), r.Owner, r.Date.ISO(), r.CreatedAt.UnixNano(),
	)
	if isConstraint(err) {
		return roombook.Reservation{}, errs.ErrSlotTaken
	}
	if err != nil {
		return roombook.Reservation{}, s.storeErr(err)
	}
	return r, nil
}

func (s *Store) ReservationsByOwner(ctx context.Context, owner string) ([]roombook.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room, owner, date, created_at
		FROM reservations
		WHERE owner = ?
		ORDER BY created_at, rowid`, owner)
	if err != nil {
		return nil, s.storeErr(err)
	}
	defer rows.Close()

	out := make([]roombook.Reservation, 0)
	for rows.Next() {
		var (
			r       roombook.Reservation
			id      string
			room    int
			date    string
			created int64
		)
		if err := rows.Scan(&id, &room, &r.Owner, &date, &created); err != nil {
			return nil, s.storeErr(err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("sqlite: reservation id %q: %w", id, err)
		}
		t, err := time.Parse(dateColumnLayout, date)
		if err != nil {
			return nil, fmt.Errorf("sqlite: reservation date %q: %w", date, err)
		}
		r.Room = roombook.Room(room)
		r.Date = roombook.DateOf(t)
		r.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storeErr(err)
	}
	return out, nil
}

func isConstraint(err error) bool {
	var se *driver.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}

// storeErr maps busy/locked databases, closed handles and expired contexts to
// ErrStoreUnavailable. Other driver errors are wrapped as-is.
func (s *Store) storeErr(err error) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	var se *driver.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("sqlite: %w", err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("sqlite: %w", err)
}
