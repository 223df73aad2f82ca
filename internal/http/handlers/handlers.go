// Package handlers exposes the session store to browser clients as JSON over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/mindcare/internal/accounts"
	"github.com/wolfman30/mindcare/internal/payments"
	"github.com/wolfman30/mindcare/internal/session"
	"github.com/wolfman30/mindcare/internal/sessionctx"
	"github.com/wolfman30/mindcare/pkg/logging"
)

const maxBodyBytes = 1 << 20

var errNotLoggedIn = errors.New("login required")

// Handler serves every session-scoped route.
type Handler struct {
	store      *session.Store
	accounts   *accounts.Service
	checkout   *payments.Checkout
	windowDays int
	logger     *logging.Logger
}

// NewHandler creates a handler. windowDays bounds the dates offered by /slots/dates.
func NewHandler(store *session.Store, accts *accounts.Service, checkout *payments.Checkout, windowDays int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:      store,
		accounts:   accts,
		checkout:   checkout,
		windowDays: windowDays,
		logger:     logger,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session returns the handle for the request's session, writing 400 when
// RequireSession did not run.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sid, ok := sessionctx.SessionIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusBadRequest, "missing session")
		return nil, false
	}
	return h.store.Session(sid), true
}

// currentUser loads the logged-in user and writes 401 when there is none.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request, sess *session.Session) (*session.User, bool) {
	u, err := sess.Current(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	if u == nil {
		h.fail(w, r, errNotLoggedIn)
		return nil, false
	}
	return u, true
}

// fail maps domain errors onto status codes. Unknown errors are logged and hidden.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": verr.Messages()})
	case errors.Is(err, errNotLoggedIn), errors.Is(err, payments.ErrNotLoggedIn):
		writeMessage(w, http.StatusUnauthorized, "login required")
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, accounts.ErrInvalidCredentials.Error())
	case errors.Is(err, accounts.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, accounts.ErrEmailTaken.Error())
	case errors.Is(err, payments.ErrActiveAppointment):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, payments.ErrPaymentRequired):
		writeMessage(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, payments.ErrVelocityExceeded):
		writeMessage(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, payments.ErrMissingDoctor),
		errors.Is(err, payments.ErrInvalidAmount),
		errors.Is(err, payments.ErrAmountMismatch),
		errors.Is(err, payments.ErrDateUnavailable),
		errors.Is(err, payments.ErrSlotUnavailable):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// UserResponse is a User without its password hash.
type UserResponse struct {
	ID                 string                  `json:"id"`
	Name               string                  `json:"name"`
	Email              string                  `json:"email"`
	CreatedAt          time.Time               `json:"createdAt"`
	ProfilePicture     string                  `json:"profilePicture,omitempty"`
	ProblemDescription string                  `json:"problemDescription,omitempty"`
	PaymentHistory     []session.PaymentRecord `json:"paymentHistory"`
	ChatHistory        []session.ChatRecord    `json:"chatHistory"`
}

func toUserResponse(u *session.User) UserResponse {
	resp := UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		CreatedAt:          u.CreatedAt,
		ProfilePicture:     u.ProfilePicture,
		ProblemDescription: u.ProblemDescription,
		PaymentHistory:     u.PaymentHistory,
		ChatHistory:        u.ChatHistory,
	}
	if resp.PaymentHistory == nil {
		resp.PaymentHistory = []session.PaymentRecord{}
	}
	if resp.ChatHistory == nil {
		resp.ChatHistory = []session.ChatRecord{}
	}
	return resp
}
