package postgres

// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the services.
//
// Exclusivity lives in the schema: accounts.id is the primary key and
// reservations carries UNIQUE (room, date). A unique violation (SQLSTATE 23505)
// is the authoritative duplicate/slot-taken signal. Migrations are embedded in
// package db and applied with goose.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/tinoosan/roombook/db"
	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
)

const (
	queryTimeout    = 3 * time.Second
	uniqueViolation = "23505"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// Migrate brings the schema up to date with the embedded goose migrations.
func (s *Store) Migrate(ctx context.Context) error {
	sqlDB := stdlib.OpenDBFromPool(s.pool)
	defer sqlDB.Close()
	goose.SetBaseFS(db.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, db.MigrationsDir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// --- Accounts ---

// AccountExists reports whether id is registered.
func (s *Store) AccountExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var exists bool
	err := s.pool.QueryRow(ctx, `select exists(select 1 from accounts where id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storeErr(err)
	}
	return exists, nil
}

// AccountByID fetches a single account.
func (s *Store) AccountByID(ctx context.Context, id string) (roombook.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var a roombook.Account
	err := s.pool.QueryRow(ctx, `
        select id, password_hash, created_at
        from accounts
        where id = $1
    `, id).Scan(&a.ID, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return roombook.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return roombook.Account{}, storeErr(err)
	}
	return a, nil
}

// CreateAccount inserts an account row; a primary key violation is ErrDuplicateAccount.
func (s *Store) CreateAccount(ctx context.Context, a roombook.Account) (roombook.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.pool.Exec(ctx, `
        insert into accounts (id, password_hash, created_at)
        values ($1, $2, $3)
    `, a.ID, a.PasswordHash, a.CreatedAt)
	if isUniqueViolation(err) {
		return roombook.Account{}, fmt.Errorf("%w: id %q is already registered", errs.ErrDuplicateAccount, a.ID)
	}
	if err != nil {
		return roombook.Account{}, storeErr(err)
	}
	return a, nil
}

// --- Reservations ---

// SlotFree reports whether no reservation holds (room, date).
func (s *Store) SlotFree(ctx context.Context, room roombook.Room, date roombook.Date) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var taken bool
	err := s.pool.QueryRow(ctx, `
        select exists(select 1 from reservations where room = $1 and date = $2)
    `, int(room), date.Time()).Scan(&taken)
	if err != nil {
		return false, storeErr(err)
	}
	return !taken, nil
}

// CreateReservation inserts a reservation; the (room, date) unique constraint
// turns a lost race into ErrSlotTaken.
func (s *Store) CreateReservation(ctx context.Context, r roombook.Reservation) (roombook.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return roombook.Reservation{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `
        insert into reservations (id, room, owner, date, created_at)
        values ($1, $2, $3, $4, $5)
    `, r.ID, int(r.Room), r.Owner, r.Date.Time(), r.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return roombook.Reservation{}, errs.ErrSlotTaken
		}
		return roombook.Reservation{}, storeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return roombook.Reservation{}, storeErr(err)
	}
	return r, nil
}

// ReservationsByOwner lists an owner's reservations in insertion order.
func (s *Store) ReservationsByOwner(ctx context.Context, owner string) ([]roombook.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
        select id, room, owner, date, created_at
        from reservations
        where owner = $1
        order by created_at asc, id asc
    `, owner)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := make([]roombook.Reservation, 0)
	for rows.Next() {
		var r roombook.Reservation
		var room int16
		var date time.Time
		if err := rows.Scan(&r.ID, &room, &r.Owner, &date, &r.CreatedAt); err != nil {
			return nil, storeErr(err)
		}
		r.Room = roombook.Room(room)
		r.Date = roombook.DateOf(date)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// storeErr classifies err: server-side SQL errors pass through wrapped,
// anything else (dial failures, closed pool, deadlines) is ErrStoreUnavailable.
func storeErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("postgres: %w", err)
	}
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}
