// Package dictionary holds the curated, read-only room catalogue.
package dictionary

import (
	"fmt"

	"github.com/tinoosan/roombook/internal/roombook"
)

type RoomDef struct {
	Number roombook.Room `json:"number"`
	Label  string        `json:"label"`
}

var curated = func() []RoomDef {
	defs := make([]RoomDef, 0, len(roombook.Rooms))
	for _, r := range roombook.Rooms {
		defs = append(defs, RoomDef{Number: r, Label: fmt.Sprintf("Study Room %d", r)})
	}
	return defs
}()

// Rooms returns a copy of the catalogue ordered by room number.
func Rooms() []RoomDef {
	out := make([]RoomDef, len(curated))
	copy(out, curated)
	return out
}

// Label returns the display label of r, or "" if r is not bookable.
func Label(r roombook.Room) string {
	for _, d := range curated {
		if d.Number == r {
			return d.Label
		}
	}
	return ""
}
