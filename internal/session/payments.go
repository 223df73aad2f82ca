package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AddPaymentRecord appends rec to the logged-in user's ledger. Amount and doctor
// are not validated here. A missing id or date is filled in.
func (s *Session) AddPaymentRecord(ctx context.Context, rec PaymentRecord) error {
	start := time.Now()
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date.IsZero() {
		rec.Date = s.store.now()
	}
	u, err := s.mutateCurrent(ctx, func(u *User) {
		u.PaymentHistory = append(u.PaymentHistory, rec)
	})
	s.store.observe("add_payment_record", start, err, u == nil)
	if err == nil && u != nil {
		s.store.logger.Info("session: payment recorded",
			"session_id", s.id,
			"user_id", u.ID,
			"doctor_id", rec.DoctorID,
			"status", string(rec.Status),
		)
	}
	return err
}

// PaymentHistory returns the logged-in user's ledger in append order.
func (s *Session) PaymentHistory(ctx context.Context) ([]PaymentRecord, error) {
	u, err := s.Current(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	return u.PaymentHistory, nil
}
