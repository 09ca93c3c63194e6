package roombook

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the only accepted wire format for reservation dates.
const DateLayout = "2006.01.02"

// Room identifies one of the bookable rooms.
type Room int

// Rooms is the fixed set of bookable rooms.
var Rooms = []Room{1, 2, 3, 4}

// Valid reports whether r is one of Rooms.
func (r Room) Valid() bool {
	for _, known := range Rooms {
		if r == known {
			return true
		}
	}
	return false
}

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String renders d as YYYY.MM.DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d.%02d.%02d", d.Year, int(d.Month), d.Day)
}

// ISO renders d as YYYY-MM-DD, the form SQL date columns use.
func (d Date) ISO() string {
	return d.Time().Format(time.DateOnly)
}

// Slot is the unit of exclusivity for booking.
type Slot struct {
	Room Room
	Date Date
}

// Account is a registered identifier with its password hash.
type Account struct {
	ID string
	// PasswordHash is an encoded argon2id hash; the raw password is never stored.
	PasswordHash string
	CreatedAt    time.Time
}

// Reservation is a committed booking of one room for one date by one owner.
type Reservation struct {
	ID        uuid.UUID
	Room      Room
	Owner     string
	Date      Date
	CreatedAt time.Time
}

// Slot returns the (room, date) pair the reservation occupies.
func (r Reservation) Slot() Slot { return Slot{Room: r.Room, Date: r.Date} }
