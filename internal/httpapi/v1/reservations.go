package v1

import (
	"fmt"
	"net/http"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/session"
)

// POST /reservation
func (s *Server) postReservation(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		s.writeErr(w, r, errs.ErrUnauthenticated, redirectLogin)
		return
	}
	req, ok := r.Context().Value(ctxKeyPostReservation).(reservationRequest)
	if !ok {
		badRequest(w, "missing validated request", redirectReservation)
		return
	}
	res, err := s.bookings.Book(r.Context(), sess.AccountID, int(req.Room), req.Date)
	if err != nil {
		s.writeErr(w, r, err, redirectReservation)
		return
	}
	toJSON(w, http.StatusCreated, reservationResponse{
		envelope:        success("reservation complete", redirectHome),
		ID:              res.ID.String(),
		Owner:           res.Owner,
		reservationItem: toReservationItem(res),
	})
}

// GET /reservation_check
func (s *Server) reservationCheck(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		s.writeErr(w, r, errs.ErrUnauthenticated, redirectLogin)
		return
	}
	list, err := s.bookings.ListByOwner(r.Context(), sess.AccountID)
	if err != nil {
		s.writeErr(w, r, err, redirectReservation)
		return
	}
	items := make([]reservationItem, 0, len(list))
	for _, res := range list {
		items = append(items, toReservationItem(res))
	}
	toJSON(w, http.StatusOK, reservationCheckResponse{
		envelope: success(fmt.Sprintf("%d reservation(s) for %s", len(items), sess.AccountID), redirectReservation),
		Owner:    sess.AccountID,
		Items:    items,
	})
}
