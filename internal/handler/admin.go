package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mrizzo/bike-weather/internal/domain"
)

// adminSubscriber is the JSON shape for the admin list. Tokens stay out of
// the response; the admin key does not entitle impersonating subscribers.
type adminSubscriber struct {
	Email         string     `json:"email"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	ZipCode       string     `json:"zip_code,omitempty"`
	Verified      bool       `json:"verified"`
	RideInSnow    bool       `json:"ride_in_snow"`
	CreatedAt     time.Time  `json:"created_at"`
	LastEmailSent *time.Time `json:"last_email_sent,omitempty"`
}

type adminListResponse struct {
	Count       int               `json:"count"`
	Subscribers []adminSubscriber `json:"subscribers"`
}

// authorizeAdmin gates the admin endpoints on the ?key= query parameter.
func (s *Server) authorizeAdmin(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("key") != s.adminKey {
		s.writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid admin key")
		return false
	}
	return true
}

// AdminListSubscribers handles GET /admin/subscribers?key=.
func (s *Server) AdminListSubscribers(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeAdmin(w, r) {
		return
	}

	subs, err := s.subscribers.List(r.Context())
	if err != nil {
		s.logger.Error("list subscribers failed", "error", err)
		s.writeJSONError(w, http.StatusInternalServerError, "internal_error", "could not list subscribers")
		return
	}

	resp := adminListResponse{
		Count:       len(subs),
		Subscribers: make([]adminSubscriber, len(subs)),
	}
	for i, sub := range subs {
		resp.Subscribers[i] = adminSubscriber{
			Email:         sub.Email,
			City:          sub.City,
			State:         sub.State,
			ZipCode:       sub.ZipCode,
			Verified:      sub.Verified,
			RideInSnow:    sub.RideInSnow,
			CreatedAt:     sub.CreatedAt,
			LastEmailSent: sub.LastEmailSent,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// AdminDeleteSubscriber handles DELETE /admin/subscribers/{email}?key=.
func (s *Server) AdminDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeAdmin(w, r) {
		return
	}

	email := chi.URLParam(r, "email")
	if err := s.subscribers.DeleteByEmail(r.Context(), email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "not_found", "subscriber not found")
			return
		}
		s.logger.Error("delete subscriber failed", "email", email, "error", err)
		s.writeJSONError(w, http.StatusInternalServerError, "internal_error", "could not delete subscriber")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
