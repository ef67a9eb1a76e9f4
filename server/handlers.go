package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Messages shown by the pages themselves. Auth flow messages come from the auth Outcome.
const (
	MessageSessionExpired   = "Your session has expired, please log in again"
	MessageBooksUnavailable = "The catalog could not be loaded"
	MessageAddedToCart      = "Book added to your cart"
	MessageRemovedFromCart  = "Book removed from your cart"
	MessageCartEmpty        = "Your cart is empty"
	MessageLoanRequested    = "Your loan was requested"
	MessageLoggedOut        = "You have been logged out"
	MessageLogoutFailed     = "Logout failed, please try again"
	MessageBookSaved        = "Book saved"
	MessageBookDeleted      = "Book deleted"
	MessageStatusUpdated    = "Loan status updated"
	MessageInvalidID        = "Unknown item"
)

// HealthHandler reports liveness for probes
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// NotFoundHandler handles 404 errors
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 - Page not found", http.StatusNotFound)
	}
}

// pathID reads a positive numeric path value such as {id}
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func logHandlerError(r *http.Request, err error, msg string) {
	log.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Msg(msg)
}
