package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/mindcare/internal/accounts"
	"github.com/wolfman30/mindcare/internal/session"
)

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	u, err := sess.Current(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if u == nil {
		writeMessage(w, http.StatusNotFound, "no user in session")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// UpdateMe handles PATCH /me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch session.UserPatch
	if !decode(w, r, &patch) {
		return
	}
	current, ok := h.currentUser(w, r, sess)
	if !ok {
		return
	}
	if patch.Empty() {
		writeJSON(w, http.StatusOK, toUserResponse(current))
		return
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		patch.Email = &email
		other, err := h.store.FindUserByEmail(r.Context(), email)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if other != nil && other.ID != current.ID {
			h.fail(w, r, accounts.ErrEmailTaken)
			return
		}
	}

	u, err := sess.UpdateCurrentUser(r.Context(), patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if u == nil {
		h.fail(w, r, errNotLoggedIn)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// UserSummary is the directory entry shown to other sessions: no contact
// details, chats or payments.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{ID: u.ID, Name: u.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out, "count": len(out)})
}
