package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/mindcare/internal/accounts"
	httpmiddleware "github.com/wolfman30/mindcare/internal/http/middleware"
	"github.com/wolfman30/mindcare/internal/kv"
	"github.com/wolfman30/mindcare/internal/payments"
	"github.com/wolfman30/mindcare/internal/session"
	"github.com/wolfman30/mindcare/internal/sessionctx"
)

var testNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	store   *session.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := session.New(kv.NewMemoryStore(), session.WithClock(func() time.Time { return testNow }))
	h := NewHandler(
		store,
		accounts.NewService(store, bcrypt.MinCost, nil),
		payments.NewCheckout(store, nil, 30, nil),
		30,
		nil,
	)

	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/slots", h.Slots)
	r.Get("/slots/dates", h.Dates)
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.RequireSession)
		r.Post("/auth/signup", h.SignUp)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/users", h.ListUsers)
		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateMe)
		r.Get("/payments", h.ListPayments)
		r.Post("/payments", h.Pay)
		r.Get("/chats", h.ListChats)
		r.Get("/chats/{doctorID}", h.GetChat)
		r.Post("/chats/{doctorID}/messages", h.PostMessage)
		r.Delete("/chats/{doctorID}", h.DeleteChat)
		r.Get("/appointment", h.GetAppointment)
		r.Post("/appointment", h.Schedule)
		r.Delete("/appointment", h.ClearAppointment)
	})
	return &testServer{handler: r, store: store}
}

func (s *testServer) do(t *testing.T, method, path, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set(sessionctx.Header, sid)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signUp(t *testing.T, sid, email string) UserResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/signup", sid, accounts.SignUpRequest{
		Name: "Ann", Email: email, Password: "secret1", ConfirmPassword: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	return u
}

func (s *testServer) pay(t *testing.T, sid, doctorID string, amount float64) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/payments", sid, payments.PayRequest{DoctorID: doctorID, Amount: amount, EnteredAmount: amount})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
