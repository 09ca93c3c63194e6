package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tinoosan/roombook/internal/errs"
	"github.com/tinoosan/roombook/internal/session"
)

type ctxKey string

const (
	ctxKeyCredentials     ctxKey = "validatedCredentials"
	ctxKeyPostReservation ctxKey = "validatedPostReservation"
	ctxKeyToken           ctxKey = "sessionToken"
)

// validateCredentials decodes an {id, password} body and stores it in the
// request context. Field rules are enforced by the account service.
func (s *Server) validateCredentials(redirect string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r, redirect) {
				return
			}
			var req credentialsRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error(), redirect)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyCredentials, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostReservation decodes the POST /reservation body.
func (s *Server) validatePostReservation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r, redirectReservation) {
				return
			}
			var req reservationRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error(), redirectReservation)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostReservation, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireSession resolves the Authorization bearer token and stores the
// session in the request context. Missing or dead tokens get 401.
func (s *Server) requireSession(redirect string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := parseBearerToken(r)
			if !ok {
				s.writeErr(w, r, errs.ErrUnauthenticated, redirect)
				return
			}
			sess, err := s.sessions.Resolve(r.Context(), tok)
			if err != nil {
				if !errors.Is(err, errs.ErrStoreUnavailable) {
					err = errs.ErrUnauthenticated
				}
				s.writeErr(w, r, err, redirect)
				return
			}
			ctx := session.WithSession(r.Context(), sess)
			ctx = context.WithValue(ctx, ctxKeyToken, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
