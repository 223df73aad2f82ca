package session

import (
	"context"
	"time"
)

// Session is one client's view of the store. The login pointer lives under
// current_user:<id> and names a user id; every read resolves through the directory.
//
// Operations that need a logged-in user are silent no-ops without one.
type Session struct {
	store *Store
	id    string
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) pointerKey() string {
	return KeyCurrentUser + ":" + s.id
}

// Current returns the logged-in user, or nil.
func (s *Session) Current(ctx context.Context) (*User, error) {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	u, err := s.current(ctx)
	s.store.observe("get_current_user", start, err, u == nil)
	return u, err
}

// SetCurrent logs u in. u is upserted into the directory first so the pointer
// never names a missing user.
func (s *Session) SetCurrent(ctx context.Context, u User) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	err := s.setCurrent(ctx, u)
	s.store.observe("set_current_user", start, err, false)
	return err
}

func (s *Session) setCurrent(ctx context.Context, u User) error {
	if err := s.store.saveUser(ctx, u); err != nil {
		return err
	}
	if err := s.store.saveJSON(ctx, s.pointerKey(), sessionPointer{UserID: u.ID}); err != nil {
		return err
	}
	s.store.logger.Debug("session: user logged in", "session_id", s.id, "user_id", u.ID)
	return nil
}

// Clear logs the session out. The directory entry is untouched.
func (s *Session) Clear(ctx context.Context) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	err := s.store.deleteKey(ctx, s.pointerKey())
	s.store.observe("clear_current_user", start, err, false)
	return err
}

// LoggedIn reports whether the session resolves to a user.
func (s *Session) LoggedIn(ctx context.Context) (bool, error) {
	u, err := s.Current(ctx)
	return u != nil, err
}

// UpdateCurrentUser merges patch into the logged-in user and persists it.
// Returns the updated user, or nil when nobody is logged in.
func (s *Session) UpdateCurrentUser(ctx context.Context, patch UserPatch) (*User, error) {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	u, err := s.mutateCurrent(ctx, func(u *User) { patch.Apply(u) })
	s.store.observe("update_current_user", start, err, u == nil)
	return u, err
}

func (s *Session) current(ctx context.Context) (*User, error) {
	var ptr sessionPointer
	found, err := s.store.loadJSON(ctx, s.pointerKey(), &ptr)
	if err != nil || !found {
		return nil, err
	}
	return s.store.userByID(ctx, ptr.UserID)
}

// mutateCurrent applies fn to the logged-in user and writes the directory back.
// Caller holds store.mu.
func (s *Session) mutateCurrent(ctx context.Context, fn func(*User)) (*User, error) {
	u, err := s.current(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	fn(u)
	if err := s.store.saveUser(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}
