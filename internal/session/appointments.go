package session

import (
	"context"
	"time"
)

// appointmentKey derives where this session's appointment lives. Caller holds store.mu.
func (s *Session) appointmentKey(ctx context.Context) (string, error) {
	if s.store.scope == ScopeGlobal {
		return KeyScheduledAppointment, nil
	}
	u, err := s.current(ctx)
	if err != nil {
		return "", err
	}
	if u == nil {
		return KeyScheduledAppointment + ":session:" + s.id, nil
	}
	return KeyScheduledAppointment + ":" + u.ID, nil
}

// SaveScheduledAppointment stores appt, replacing any existing one.
func (s *Session) SaveScheduledAppointment(ctx context.Context, appt ScheduledAppointment) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	err := s.saveAppointment(ctx, appt)
	s.store.observe("save_appointment", start, err, false)
	return err
}

func (s *Session) saveAppointment(ctx context.Context, appt ScheduledAppointment) error {
	key, err := s.appointmentKey(ctx)
	if err != nil {
		return err
	}
	if appt.ScheduledAt.IsZero() {
		appt.ScheduledAt = s.store.now()
	}
	return s.store.saveJSON(ctx, key, appt)
}

// ScheduledAppointment returns the stored appointment, or nil. An appointment
// whose start is not after now is deleted as part of the read. Entries whose
// date or time cannot be parsed are returned unchanged.
func (s *Session) ScheduledAppointment(ctx context.Context) (*ScheduledAppointment, error) {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	appt, err := s.scheduledAppointment(ctx)
	s.store.observe("get_appointment", start, err, appt == nil)
	return appt, err
}

func (s *Session) scheduledAppointment(ctx context.Context) (*ScheduledAppointment, error) {
	key, err := s.appointmentKey(ctx)
	if err != nil {
		return nil, err
	}
	var appt ScheduledAppointment
	found, err := s.store.loadJSON(ctx, key, &appt)
	if err != nil || !found {
		return nil, err
	}

	now := s.store.now()
	startsAt, perr := appt.StartsAt(now.Location())
	if perr == nil && !now.Before(startsAt) {
		if err := s.store.deleteKey(ctx, key); err != nil {
			return nil, err
		}
		s.store.metrics.ObserveExpired()
		s.store.logger.Info("session: scheduled appointment expired",
			"session_id", s.id,
			"doctor_id", appt.DoctorID,
			"starts_at", startsAt.Format(time.RFC3339),
		)
		return nil, nil
	}
	return &appt, nil
}

// ClearScheduledAppointment removes the appointment if there is one.
func (s *Session) ClearScheduledAppointment(ctx context.Context) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	key, err := s.appointmentKey(ctx)
	if err == nil {
		err = s.store.deleteKey(ctx, key)
	}
	s.store.observe("clear_appointment", start, err, false)
	return err
}

// HasActiveAppointment reports whether ScheduledAppointment would return a value.
func (s *Session) HasActiveAppointment(ctx context.Context) (bool, error) {
	appt, err := s.ScheduledAppointment(ctx)
	return appt != nil, err
}

// BookAppointment saves appt for the logged-in user, spending the first
// completed, unbooked payment that match accepts. The active-appointment check,
// the payment claim and the save happen under one lock. Returns nil without a
// logged-in user.
func (s *Session) BookAppointment(ctx context.Context, appt ScheduledAppointment, match func(PaymentRecord) bool) (*ScheduledAppointment, error) {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	booked, err := s.bookAppointment(ctx, appt, match)
	s.store.observe("book_appointment", start, err, booked == nil && err == nil)
	return booked, err
}

func (s *Session) bookAppointment(ctx context.Context, appt ScheduledAppointment, match func(PaymentRecord) bool) (*ScheduledAppointment, error) {
	u, err := s.current(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	existing, err := s.scheduledAppointment(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAppointmentActive
	}

	idx := -1
	for i, rec := range u.PaymentHistory {
		if rec.Status == PaymentCompleted && !rec.Booked && (match == nil || match(rec)) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrPaymentRequired
	}

	u.PaymentHistory[idx].Booked = true
	if err := s.store.saveUser(ctx, *u); err != nil {
		return nil, err
	}
	appt.PaymentID = u.PaymentHistory[idx].ID
	if appt.ScheduledAt.IsZero() {
		appt.ScheduledAt = s.store.now()
	}
	if err := s.saveAppointment(ctx, appt); err != nil {
		return nil, err
	}
	return &appt, nil
}
