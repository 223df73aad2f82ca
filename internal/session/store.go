// Package session implements the MindCare session store: a user directory, a
// per-session login pointer, the payment ledger, per-counselor chat threads and
// the scheduled appointment, all kept as JSON values in a kv.Store.
//
// Absent records are reported as nil values, never as errors. Errors only come
// from the underlying kv backend or from undecodable stored JSON.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/mindcare/internal/kv"
	"github.com/wolfman30/mindcare/internal/observability/metrics"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// Fixed keys of the persisted layout.
const (
	KeyUsers                = "users"
	KeyCurrentUser          = "current_user"
	KeyScheduledAppointment = "scheduled_appointment"
)

// AppointmentScope selects how the scheduled appointment key is derived.
type AppointmentScope string

const (
	// ScopeUser keys the appointment by the logged-in user, or by the session
	// when nobody is logged in.
	ScopeUser AppointmentScope = "user"
	// ScopeGlobal uses one key shared by every session.
	ScopeGlobal AppointmentScope = "global"
)

// ParseAppointmentScope maps a config value to a scope, defaulting to ScopeUser.
func ParseAppointmentScope(v string) AppointmentScope {
	if AppointmentScope(v) == ScopeGlobal {
		return ScopeGlobal
	}
	return ScopeUser
}

// Store owns the directory and hands out Session handles.
type Store struct {
	kv      kv.Store
	now     func() time.Time
	scope   AppointmentScope
	metrics *metrics.StoreMetrics
	logger  *logging.Logger

	// mu serialises read-modify-write cycles against kv within this process.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithAppointmentScope(scope AppointmentScope) Option {
	return func(s *Store) { s.scope = scope }
}

func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store over backend.
func New(backend kv.Store, opts ...Option) *Store {
	if backend == nil {
		panic("session: kv store cannot be nil")
	}
	s := &Store{
		kv:     backend,
		now:    time.Now,
		scope:  ScopeUser,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Session returns the handle for one client session.
func (s *Store) Session(id string) *Session {
	return &Session{store: s, id: id}
}

// ListUsers returns every registered user in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.listUsers(ctx)
	s.observe("list_users", start, err, false)
	return users, err
}

// SaveUser inserts u, or replaces the entry with the same id in place.
// Email uniqueness is the caller's responsibility.
func (s *Store) SaveUser(ctx context.Context, u User) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.saveUser(ctx, u)
	s.observe("save_user", start, err, false)
	return err
}

// FindUserByEmail returns the first user whose email matches exactly, or nil.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		s.observe("find_user_by_email", start, err, false)
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			s.observe("find_user_by_email", start, nil, false)
			return &users[i], nil
		}
	}
	s.observe("find_user_by_email", start, nil, true)
	return nil, nil
}

// UserByID returns the directory entry for id, or nil.
func (s *Store) UserByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByID(ctx, id)
}

func (s *Store) listUsers(ctx context.Context) ([]User, error) {
	var users []User
	found, err := s.loadJSON(ctx, KeyUsers, &users)
	if err != nil || !found {
		return []User{}, err
	}
	return users, nil
}

func (s *Store) saveUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return ErrMissingUserID
	}
	users, err := s.listUsers(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, u)
	}
	return s.saveJSON(ctx, KeyUsers, users)
}

func (s *Store) userByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, nil
	}
	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// loadJSON decodes key into dst. found is false when the key is absent.
func (s *Store) loadJSON(ctx context.Context, key string, dst any) (found bool, err error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("session: load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("session: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("session: persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) deleteKey(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		return fmt.Errorf("session: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) observe(op string, start time.Time, err error, noop bool) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
		s.logger.Error("session store operation failed", "op", op, "error", err)
	case noop:
		result = "noop"
	}
	s.metrics.ObserveOperation(op, result, time.Since(start).Seconds())
}
