package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mrizzo/bike-weather/internal/domain"
	"github.com/mrizzo/bike-weather/internal/service"
	"github.com/mrizzo/bike-weather/web"
)

// formValues carries the location and preference fields shared by the signup
// and settings forms, echoed back so a failed submit keeps the user's input.
type formValues struct {
	Email             string
	City              string
	State             string
	ZipCode           string
	MinTempNoPrecip   float64
	MinTempWithPrecip float64
	RideInSnow        bool
}

func defaultFormValues() formValues {
	return formValues{
		MinTempNoPrecip:   domain.DefaultMinTempNoPrecip,
		MinTempWithPrecip: domain.DefaultMinTempWithPrecip,
	}
}

func formValuesFromRequest(r *http.Request) formValues {
	return formValues{
		Email:             strings.TrimSpace(r.FormValue("email")),
		City:              strings.TrimSpace(r.FormValue("city")),
		State:             strings.TrimSpace(r.FormValue("state")),
		ZipCode:           strings.TrimSpace(r.FormValue("zip_code")),
		MinTempNoPrecip:   formFloat(r, "min_temp_no_precip", domain.DefaultMinTempNoPrecip),
		MinTempWithPrecip: formFloat(r, "min_temp_with_precip", domain.DefaultMinTempWithPrecip),
		RideInSnow:        r.FormValue("ride_in_snow") != "",
	}
}

// formFloat reads a numeric form field, falling back for blank or unparsable
// input. Thresholds always have a sane value, so a garbled field never 500s.
func formFloat(r *http.Request, name string, fallback float64) float64 {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

type indexPage struct {
	Flash  string
	Error  string
	Form   formValues
	States []string
}

type settingsPage struct {
	Flash  string
	Error  string
	Email  string
	Token  string
	Form   formValues
	States []string
}

type messagePage struct {
	Title   string
	Message string
}

// renderPage writes an HTML page with the given status.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := web.Render(w, name, data); err != nil {
		s.logger.Error("render page failed", "page", name, "error", err)
	}
}

// Index handles GET /: the signup form with default preferences.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "index.html", indexPage{
		Form:   defaultFormValues(),
		States: web.States,
	})
}

// Subscribe handles POST /subscribe. A failed submit re-renders the form
// with the user's input intact and an error banner explaining what to fix.
func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, "index.html", indexPage{
			Error:  "could not read the form submission",
			Form:   defaultFormValues(),
			States: web.States,
		})
		return
	}

	form := formValuesFromRequest(r)
	sub, err := s.subscribers.Subscribe(r.Context(), service.SubscribeInput{
		Email:             form.Email,
		City:              form.City,
		State:             form.State,
		ZipCode:           form.ZipCode,
		MinTempNoPrecip:   form.MinTempNoPrecip,
		MinTempWithPrecip: form.MinTempWithPrecip,
		RideInSnow:        form.RideInSnow,
	})
	if err != nil {
		page := indexPage{Form: form, States: web.States}
		switch {
		case errors.Is(err, domain.ErrValidation):
			page.Error = unwrapMessage(err)
			s.renderPage(w, http.StatusUnprocessableEntity, "index.html", page)
		case errors.Is(err, domain.ErrNotFound):
			page.Error = "we couldn't find that location — check the city, state, and ZIP"
			s.renderPage(w, http.StatusUnprocessableEntity, "index.html", page)
		case errors.Is(err, domain.ErrDuplicate):
			page.Error = "that email address is already subscribed"
			s.renderPage(w, http.StatusConflict, "index.html", page)
		default:
			s.logger.Error("subscribe failed", "error", err)
			s.renderPage(w, http.StatusInternalServerError, "message.html", messagePage{
				Title:   "Something went wrong",
				Message: "We couldn't complete your signup. Please try again in a moment.",
			})
		}
		return
	}

	s.renderPage(w, http.StatusOK, "message.html", messagePage{
		Title:   "You're subscribed!",
		Message: "Your first bike weather report for " + sub.City + ", " + sub.State + " is on its way to " + sub.Email + ".",
	})
}

// Unsubscribe handles GET /unsubscribe/{token}.
func (s *Server) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	sub, err := s.subscribers.Unsubscribe(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.renderPage(w, http.StatusNotFound, "message.html", messagePage{
				Title:   "Link not found",
				Message: "This unsubscribe link is invalid or was already used.",
			})
			return
		}
		s.logger.Error("unsubscribe failed", "error", err)
		s.renderPage(w, http.StatusInternalServerError, "message.html", messagePage{
			Title:   "Something went wrong",
			Message: "We couldn't process your unsubscribe. Please try again in a moment.",
		})
		return
	}

	s.renderPage(w, http.StatusOK, "message.html", messagePage{
		Title:   "Unsubscribed",
		Message: sub.Email + " will no longer receive bike weather reports.",
	})
}

// SettingsForm handles GET /settings/{token}: the prefilled settings form.
func (s *Server) SettingsForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	sub, err := s.subscribers.GetBySettingsToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.renderPage(w, http.StatusNotFound, "message.html", messagePage{
				Title:   "Link not found",
				Message: "This settings link is invalid.",
			})
			return
		}
		s.logger.Error("load settings failed", "error", err)
		s.renderPage(w, http.StatusInternalServerError, "message.html", messagePage{
			Title:   "Something went wrong",
			Message: "We couldn't load your settings. Please try again in a moment.",
		})
		return
	}

	s.renderPage(w, http.StatusOK, "settings.html", settingsPage{
		Email:  sub.Email,
		Token:  token,
		Form:   subscriberFormValues(sub),
		States: web.States,
	})
}

// UpdateSettings handles POST /settings/{token}.
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, "message.html", messagePage{
			Title:   "Bad request",
			Message: "We could not read the form submission.",
		})
		return
	}

	form := formValuesFromRequest(r)
	sub, err := s.subscribers.UpdateSettings(r.Context(), token, service.SettingsInput{
		City:              form.City,
		State:             form.State,
		ZipCode:           form.ZipCode,
		MinTempNoPrecip:   form.MinTempNoPrecip,
		MinTempWithPrecip: form.MinTempWithPrecip,
		RideInSnow:        form.RideInSnow,
	})
	if err != nil {
		page := settingsPage{Token: token, Form: form, States: web.States}
		switch {
		case errors.Is(err, domain.ErrValidation):
			page.Error = unwrapMessage(err)
			s.renderPage(w, http.StatusUnprocessableEntity, "settings.html", page)
		case errors.Is(err, domain.ErrNotFound):
			// Either the token is dead or the new location didn't geocode.
			// A dead token gets the message page on the next GET; re-render
			// the form so a typo'd city is a one-field fix.
			page.Error = "we couldn't find that location — check the city, state, and ZIP"
			s.renderPage(w, http.StatusUnprocessableEntity, "settings.html", page)
		default:
			s.logger.Error("update settings failed", "error", err)
			s.renderPage(w, http.StatusInternalServerError, "message.html", messagePage{
				Title:   "Something went wrong",
				Message: "We couldn't save your settings. Please try again in a moment.",
			})
		}
		return
	}

	s.renderPage(w, http.StatusOK, "settings.html", settingsPage{
		Flash:  "Settings saved.",
		Email:  sub.Email,
		Token:  token,
		Form:   subscriberFormValues(sub),
		States: web.States,
	})
}

// Preview handles GET /preview: renders the report HTML for an arbitrary
// location and preference profile, no subscription required.
// Query parameters: city, state, zip, min_temp_no_precip,
// min_temp_with_precip, ride_in_snow.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	state := strings.TrimSpace(q.Get("state"))
	zip := strings.TrimSpace(q.Get("zip"))
	if city == "" || state == "" {
		s.renderPage(w, http.StatusBadRequest, "message.html", messagePage{
			Title:   "Bad request",
			Message: "city and state query parameters are required.",
		})
		return
	}

	prefs := domain.DefaultPreferences()
	prefs.MinTempNoPrecip = queryFloat(q.Get("min_temp_no_precip"), prefs.MinTempNoPrecip)
	prefs.MinTempWithPrecip = queryFloat(q.Get("min_temp_with_precip"), prefs.MinTempWithPrecip)
	prefs.RideInSnow = q.Get("ride_in_snow") == "true" || q.Get("ride_in_snow") == "1"

	html, err := s.reports.Preview(r.Context(), city, state, zip, prefs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.renderPage(w, http.StatusNotFound, "message.html", messagePage{
				Title:   "Location not found",
				Message: "We couldn't find that location — check the city, state, and ZIP.",
			})
			return
		}
		s.logger.Error("preview failed", "error", err)
		s.renderPage(w, http.StatusInternalServerError, "message.html", messagePage{
			Title:   "Something went wrong",
			Message: "We couldn't build the preview. Please try again in a moment.",
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		s.logger.Error("write preview failed", "error", err)
	}
}

func queryFloat(raw string, fallback float64) float64 {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func subscriberFormValues(sub domain.Subscriber) formValues {
	return formValues{
		Email:             sub.Email,
		City:              sub.City,
		State:             sub.State,
		ZipCode:           sub.ZipCode,
		MinTempNoPrecip:   sub.MinTempNoPrecip,
		MinTempWithPrecip: sub.MinTempWithPrecip,
		RideInSnow:        sub.RideInSnow,
	}
}
