package v1

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/tinoosan/roombook/internal/dictionary"
	"github.com/tinoosan/roombook/internal/roombook"
)

// credentialsRequest is the body of POST /signup and POST /login.
type credentialsRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type reservationRequest struct {
	Room roomNumber `json:"room"`
	Date string     `json:"date"`
}

// roomNumber accepts a JSON integer or one of the exact strings "1".."4".
// Anything else decodes to 0, which the booking service rejects as an
// invalid room.
type roomNumber int

func (n *roomNumber) UnmarshalJSON(b []byte) error {
	*n = 0
	var num int
	if err := json.Unmarshal(b, &num); err == nil {
		*n = roomNumber(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return nil
	}
	for _, r := range roombook.Rooms {
		if str == strconv.Itoa(int(r)) {
			*n = roomNumber(r)
			return nil
		}
	}
	return nil
}

type signUpResponse struct {
	envelope
	ID string `json:"id"`
}

type loginResponse struct {
	envelope
	AccountID string    `json:"account_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type reservationItem struct {
	Room  int    `json:"room"`
	Label string `json:"label"`
	Date  string `json:"date"`
}

type reservationResponse struct {
	envelope
	ID    string `json:"id"`
	Owner string `json:"owner"`
	reservationItem
}

type reservationCheckResponse struct {
	envelope
	Owner string            `json:"owner"`
	Items []reservationItem `json:"items"`
}

type roomsResponse struct {
	Items []dictionary.RoomDef `json:"items"`
}

func toReservationItem(r roombook.Reservation) reservationItem {
	return reservationItem{Room: int(r.Room), Label: dictionary.Label(r.Room), Date: r.Date.String()}
}
