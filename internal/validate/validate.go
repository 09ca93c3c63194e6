// Package validate holds the pure input checks run before any store access.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/roombook"
)

const (
	MaxIdentifierLen = 15
	MaxPasswordLen   = 30
)

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	rePassword   = regexp.MustCompile(`^[A-Za-z0-9!@]+$`)
	reDate       = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}$`)
)

// Identifier checks an account id: 1-15 chars, ASCII letters and digits only.
func Identifier(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: id is required", errs.ErrInvalidIdentifier)
	case hasSpace(id):
		return fmt.Errorf("%w: id must not contain whitespace", errs.ErrInvalidIdentifier)
	case len(id) > MaxIdentifierLen:
		return fmt.Errorf("%w: id must be at most %d characters", errs.ErrInvalidIdentifier, MaxIdentifierLen)
	case !reIdentifier.MatchString(id):
		return fmt.Errorf("%w: id may only contain letters and digits", errs.ErrInvalidIdentifier)
	}
	return nil
}

// Password checks a password: 1-30 chars, ASCII letters, digits, '!' and '@'.
func Password(pw string) error {
	switch {
	case pw == "":
		return fmt.Errorf("%w: password is required", errs.ErrInvalidPassword)
	case hasSpace(pw):
		return fmt.Errorf("%w: password must not contain whitespace", errs.ErrInvalidPassword)
	case len(pw) > MaxPasswordLen:
		return fmt.Errorf("%w: password must be at most %d characters", errs.ErrInvalidPassword, MaxPasswordLen)
	case !rePassword.MatchString(pw):
		return fmt.Errorf("%w: password may only contain letters, digits, ! and @", errs.ErrInvalidPassword)
	}
	return nil
}

// Room checks n against the fixed room set.
func Room(n int) (roombook.Room, error) {
	r := roombook.Room(n)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: choose a room between %d and %d", errs.ErrInvalidRoom, roombook.Rooms[0], roombook.Rooms[len(roombook.Rooms)-1])
	}
	return r, nil
}

// Date parses s strictly as YYYY.MM.DD. Out-of-range components are rejected,
// never normalized (2023.02.30 fails).
func Date(s string) (roombook.Date, error) {
	if !reDate.MatchString(s) {
		return roombook.Date{}, fmt.Errorf("%w: date must look like YYYY.MM.DD", errs.ErrInvalidDate)
	}
	t, err := time.Parse(roombook.DateLayout, s)
	if err != nil {
		return roombook.Date{}, fmt.Errorf("%w: %s is not a calendar date", errs.ErrInvalidDate, s)
	}
	d := roombook.DateOf(t)
	if d.Year < 1 {
		return roombook.Date{}, fmt.Errorf("%w: %s is not a calendar date", errs.ErrInvalidDate, s)
	}
	return d, nil
}

func hasSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}
