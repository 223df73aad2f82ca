package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/mindcare/internal/session"
)

// PostMessageRequest is one chat message sent to a counselor thread.
type PostMessageRequest struct {
	DoctorName    string         `json:"doctorName"`
	Text          string         `json:"text"`
	Sender        session.Sender `json:"sender"`
	SupporterName string         `json:"supporterName,omitempty"`
}

// ListChats handles GET /chats
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, ok := h.currentUser(w, r, sess); !ok {
		return
	}
	threads, err := sess.ChatThreads(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if threads == nil {
		threads = []session.ChatRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": threads})
}

// GetChat handles GET /chats/{doctorID}
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, ok := h.currentUser(w, r, sess); !ok {
		return
	}
	chat, err := sess.ChatHistory(r.Context(), chi.URLParam(r, "doctorID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if chat == nil {
		writeMessage(w, http.StatusNotFound, "no chat with this counselor")
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// PostMessage handles POST /chats/{doctorID}/messages
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req PostMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeMessage(w, http.StatusBadRequest, "message text is required")
		return
	}
	if req.Sender == "" {
		req.Sender = session.SenderUser
	}
	if !req.Sender.Valid() {
		writeMessage(w, http.StatusBadRequest, "sender must be user, support or ai")
		return
	}
	if _, ok := h.currentUser(w, r, sess); !ok {
		return
	}

	doctorID := chi.URLParam(r, "doctorID")
	msg := session.Message{Text: req.Text, Sender: req.Sender, SupporterName: req.SupporterName}
	if err := sess.AddChatMessage(r.Context(), doctorID, req.DoctorName, msg); err != nil {
		h.fail(w, r, err)
		return
	}
	chat, err := sess.ChatHistory(r.Context(), doctorID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

// DeleteChat handles DELETE /chats/{doctorID}
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, ok := h.currentUser(w, r, sess); !ok {
		return
	}
	if err := sess.DeleteChatHistory(r.Context(), chi.URLParam(r, "doctorID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
