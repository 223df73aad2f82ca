package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/mindcare/internal/slots"
)

// Slots handles GET /slots?date=YYYY-MM-DD
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	now := h.store.Now()
	if date == "" {
		date = now.Format("2006-01-02")
	}
	if !slots.InWindow(date, now, h.windowDays) {
		writeMessage(w, http.StatusBadRequest, "date is outside the booking window")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"today": slots.IsToday(date, now),
		"slots": slots.Day(date, now, slots.DefaultSlots),
	})
}

// Dates handles GET /slots/dates
func (h *Handler) Dates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dates": slots.AvailableDates(h.store.Now(), h.windowDays),
	})
}
