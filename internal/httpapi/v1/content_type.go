package v1

import (
	"net/http"
	"strings"
)

// requireJSON ensures the request has Content-Type application/json (optionally with params).
// Writes 415 if not JSON and returns false; otherwise returns true.
func requireJSON(w http.ResponseWriter, r *http.Request, redirect string) bool {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0]))
	if mime != "application/json" {
		toJSON(w, http.StatusUnsupportedMediaType, envelope{
			Status:   statusFailure,
			Reason:   "Content-Type must be application/json",
			Code:     "unsupported_media_type",
			Redirect: redirect,
		})
		return false
	}
	return true
}
