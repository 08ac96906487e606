package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/event-locator/internal/application/event"
	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/pkg/validate"
	"github.com/event-locator/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

const maxImageSize = 5 << 20

// EventHandler handles event endpoints.
type EventHandler struct {
	svc event.Service
}

func NewEventHandler(svc event.Service) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateEventRequest
	if err := decode(r, &req); err != nil {
		httpError(w, err)
		return
	}
	e, err := h.svc.Create(r.Context(), actor(claims.UserID, claims.Role), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", event.DefaultLimit),
	}
	var err error
	if filter.StartDate, err = queryTime(r, "startDate"); err != nil {
		httpError(w, err)
		return
	}
	if filter.EndDate, err = queryTime(r, "endDate"); err != nil {
		httpError(w, err)
		return
	}
	if err := validate.Struct(filter); err != nil {
		httpError(w, err)
		return
	}
	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateEventRequest
	if err := decode(r, &req); err != nil {
		httpError(w, err)
		return
	}
	e, err := h.svc.Update(r.Context(), actor(claims.UserID, claims.Role), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), actor(claims.UserID, claims.Role), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "event deleted"})
}

// UploadImage expects a multipart form with the file under "image".
func (h *EventHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	e, err := h.svc.UploadImage(r.Context(), actor(claims.UserID, claims.Role), chi.URLParam(r, "id"), header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func actor(userID, role string) domain.Actor {
	return domain.Actor{UserID: userID, Role: role}
}

// queryTime accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s: invalid date %q: %w", key, raw, domain.ErrBadRequest)
}
