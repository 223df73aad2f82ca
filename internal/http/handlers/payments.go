package handlers

import (
	"net/http"

	"github.com/wolfman30/mindcare/internal/payments"
	"github.com/wolfman30/mindcare/internal/session"
)

// ListPayments handles GET /payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	u, ok := h.currentUser(w, r, sess)
	if !ok {
		return
	}
	history := u.PaymentHistory
	if history == nil {
		history = []session.PaymentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": history})
}

// Pay handles POST /payments
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req payments.PayRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.checkout.Pay(r.Context(), sess, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
