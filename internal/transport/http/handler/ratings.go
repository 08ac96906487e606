package handler

import (
	"net/http"

	"github.com/event-locator/internal/application/rating"
	"github.com/event-locator/internal/domain"
	"github.com/event-locator/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// RatingHandler handles event rating endpoints.
type RatingHandler struct {
	svc rating.Service
}

func NewRatingHandler(svc rating.Service) *RatingHandler { return &RatingHandler{svc: svc} }

func (h *RatingHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.svc.ListByEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}

func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateRatingRequest
	if err := decode(r, &req); err != nil {
		httpError(w, err)
		return
	}
	rt, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

func (h *RatingHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateRatingRequest
	if err := decode(r, &req); err != nil {
		httpError(w, err)
		return
	}
	rt, err := h.svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "rating deleted"})
}
