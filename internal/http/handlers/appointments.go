package handlers

import (
	"net/http"

	"github.com/wolfman30/mindcare/internal/payments"
)

// GetAppointment handles GET /appointment
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	appt, err := sess.ScheduledAppointment(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if appt == nil {
		writeMessage(w, http.StatusNotFound, "no scheduled appointment")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Schedule handles POST /appointment
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req payments.ScheduleRequest
	if !decode(w, r, &req) {
		return
	}
	appt, err := h.checkout.Schedule(r.Context(), sess, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// ClearAppointment handles DELETE /appointment
func (h *Handler) ClearAppointment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.ClearScheduledAppointment(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
