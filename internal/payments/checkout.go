package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/mindcare/internal/session"
	"github.com/wolfman30/mindcare/internal/slots"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// PayRequest is a consultation payment entered in the checkout dialog.
type PayRequest struct {
	DoctorID      string  `json:"doctorId"`
	DoctorName    string  `json:"doctorName"`
	Amount        float64 `json:"amount"`
	EnteredAmount float64 `json:"enteredAmount"`
}

// ScheduleRequest books a future consultation slot.
type ScheduleRequest struct {
	DoctorID   string  `json:"doctorId"`
	DoctorName string  `json:"doctorName"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Amount     float64 `json:"amount"`
}

// Checkout simulates paying for and booking consultations. No money moves;
// successful payments are only recorded in the session ledger.
type Checkout struct {
	store      *session.Store
	velocity   *VelocityChecker
	windowDays int
	slots      []string
	logger     *logging.Logger
}

// NewCheckout wires a checkout over store. velocity may be nil.
func NewCheckout(store *session.Store, velocity *VelocityChecker, windowDays int, logger *logging.Logger) *Checkout {
	if store == nil {
		panic("payments: session store is nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if windowDays <= 0 {
		windowDays = slots.DefaultDays
	}
	return &Checkout{
		store:      store,
		velocity:   velocity,
		windowDays: windowDays,
		slots:      slots.DefaultSlots,
		logger:     logger,
	}
}

// Pay records a completed payment for the logged-in user once the entered
// amount matches the fee exactly.
func (c *Checkout) Pay(ctx context.Context, sess *session.Session, req PayRequest) (*session.PaymentRecord, error) {
	user, err := c.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.DoctorID) == "" {
		return nil, ErrMissingDoctor
	}
	if !validAmount(req.Amount) || !validAmount(req.EnteredAmount) {
		return nil, ErrInvalidAmount
	}

	result, err := c.velocity.CheckPaymentVelocity(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("payments: velocity check: %w", err)
	}
	if !result.Allowed {
		return nil, ErrVelocityExceeded
	}

	if req.EnteredAmount != req.Amount {
		c.logger.Info("payments: amount mismatch",
			"session_id", sess.ID(),
			"user_id", user.ID,
			"doctor_id", req.DoctorID,
		)
		return nil, ErrAmountMismatch
	}

	rec := session.PaymentRecord{
		ID:         uuid.NewString(),
		DoctorID:   req.DoctorID,
		DoctorName: req.DoctorName,
		Amount:     req.Amount,
		Date:       c.store.Now(),
		Status:     session.PaymentCompleted,
	}
	if err := sess.AddPaymentRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("payments: record payment: %w", err)
	}
	return &rec, nil
}

// Schedule books req for the logged-in user. The user must hold a completed
// payment for the same counselor and fee that no earlier booking used; only
// one appointment may be pending at a time and the slot must still be open.
func (c *Checkout) Schedule(ctx context.Context, sess *session.Session, req ScheduleRequest) (*session.ScheduledAppointment, error) {
	user, err := c.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.DoctorID) == "" {
		return nil, ErrMissingDoctor
	}
	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	now := c.store.Now()
	if !slots.InWindow(req.Date, now, c.windowDays) {
		return nil, ErrDateUnavailable
	}
	if !slices.Contains(slots.Open(req.Date, now, c.slots), req.Time) {
		return nil, ErrSlotUnavailable
	}

	appt, err := sess.BookAppointment(ctx, session.ScheduledAppointment{
		DoctorID:    req.DoctorID,
		DoctorName:  req.DoctorName,
		Date:        req.Date,
		Time:        req.Time,
		Amount:      req.Amount,
		ScheduledAt: now,
	}, func(rec session.PaymentRecord) bool {
		return rec.DoctorID == req.DoctorID && rec.Amount == req.Amount
	})
	switch {
	case errors.Is(err, session.ErrAppointmentActive):
		return nil, ErrActiveAppointment
	case errors.Is(err, session.ErrPaymentRequired):
		return nil, ErrPaymentRequired
	case err != nil:
		return nil, fmt.Errorf("payments: book appointment: %w", err)
	case appt == nil:
		// logged out between the check above and the booking
		return nil, ErrNotLoggedIn
	}

	c.logger.Info("payments: appointment scheduled",
		"session_id", sess.ID(),
		"user_id", user.ID,
		"doctor_id", req.DoctorID,
		"payment_id", appt.PaymentID,
		"date", req.Date,
		"time", req.Time,
	)
	return appt, nil
}

func (c *Checkout) requireUser(ctx context.Context, sess *session.Session) (*session.User, error) {
	user, err := sess.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("payments: load session: %w", err)
	}
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	return user, nil
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
