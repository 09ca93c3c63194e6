package v1

import (
	"net/http"
)

// POST /signup
func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyCredentials).(credentialsRequest)
	if !ok {
		badRequest(w, "missing validated request", redirectSignup)
		return
	}
	acc, err := s.accounts.SignUp(r.Context(), req.ID, req.Password)
	if err != nil {
		s.writeErr(w, r, err, redirectSignup)
		return
	}
	toJSON(w, http.StatusCreated, signUpResponse{
		envelope: success("account created", redirectLogin),
		ID:       acc.ID,
	})
}

// POST /login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyCredentials).(credentialsRequest)
	if !ok {
		badRequest(w, "missing validated request", redirectLogin)
		return
	}
	sess, token, err := s.accounts.Login(r.Context(), req.ID, req.Password)
	if err != nil {
		s.writeErr(w, r, err, redirectLogin)
		return
	}
	toJSON(w, http.StatusOK, loginResponse{
		envelope:  success("logged in", redirectHome),
		AccountID: sess.AccountID,
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
	})
}

// POST /logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok, _ := r.Context().Value(ctxKeyToken).(string)
	if err := s.accounts.Logout(r.Context(), tok); err != nil {
		s.writeErr(w, r, err, redirectHome)
		return
	}
	toJSON(w, http.StatusOK, success("logged out", redirectHome))
}
