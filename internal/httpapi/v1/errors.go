package v1

import (
	"errors"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/roombook/internal/errs"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Where a client should navigate after each outcome.
const (
	redirectHome        = "/"
	redirectLogin       = "/login"
	redirectSignup      = "/signup"
	redirectReservation = "/reservation"
)

// envelope is the payload shared by every API response.
type envelope struct {
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Code     string `json:"code,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func success(reason, redirect string) envelope {
	return envelope{Status: statusSuccess, Reason: reason, Code: "ok", Redirect: redirect}
}

var fallbackReasons = map[string]string{
	"invalid_identifier":    "id must be 1-15 letters or digits with no spaces",
	"invalid_password":      "password must be 1-30 letters, digits, ! or @ with no spaces",
	"invalid_room":          "choose a room between 1 and 4",
	"invalid_date":          "date must be a real calendar date written YYYY.MM.DD",
	"duplicate_account":     "id already exists",
	"authentication_failed": "unknown id or wrong password",
	"unauthenticated":       "log in to make a reservation",
	"slot_taken":            "room is already reserved on that date",
	"not_found":             "not found",
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidIdentifier),
		errors.Is(err, errs.ErrInvalidPassword),
		errors.Is(err, errs.ErrInvalidRoom),
		errors.Is(err, errs.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDuplicateAccount), errors.Is(err, errs.ErrSlotTaken):
		return http.StatusConflict
	case errors.Is(err, errs.ErrAuthenticationFailed), errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// reasonFor returns the human readable part of a wrapped sentinel
// ("slot_taken: room 2 ..." -> "room 2 ..."). Server-side failures never
// expose their cause.
func reasonFor(err error, code string) string {
	switch statusFor(err) {
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	case http.StatusInternalServerError:
		return "internal error"
	}
	if detail, ok := strings.CutPrefix(err.Error(), code+": "); ok && detail != "" {
		return detail
	}
	return fallbackReasons[code]
}

// writeErr renders err as a failure envelope. Unauthenticated callers are
// always sent to the login page regardless of redirect.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error, redirect string) {
	status := statusFor(err)
	code := errs.Code(err)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "req_id", chimw.GetReqID(r.Context()), "code", code, "err", err)
	}
	if errors.Is(err, errs.ErrUnauthenticated) {
		redirect = redirectLogin
	}
	toJSON(w, status, envelope{Status: statusFailure, Reason: reasonFor(err, code), Code: code, Redirect: redirect})
}

func badRequest(w http.ResponseWriter, reason, redirect string) {
	toJSON(w, http.StatusBadRequest, envelope{Status: statusFailure, Reason: reason, Code: "invalid_request", Redirect: redirect})
}
