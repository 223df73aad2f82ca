package payments

import "errors"

var (
	// ErrNotLoggedIn is returned when a payment or booking is attempted without a session user
	ErrNotLoggedIn = errors.New("payments: login required")

	// ErrMissingDoctor is returned when the counselor id is blank
	ErrMissingDoctor = errors.New("payments: doctor id is required")

	// ErrInvalidAmount is returned for non-positive or non-finite amounts
	ErrInvalidAmount = errors.New("payments: please enter a valid amount")

	// ErrAmountMismatch is returned when the entered amount differs from the fee
	ErrAmountMismatch = errors.New("payments: entered amount must equal the consultation fee")

	// ErrVelocityExceeded is returned when a user makes too many payment attempts
	ErrVelocityExceeded = errors.New("payments: too many payment attempts")

	// ErrActiveAppointment is returned when scheduling while another appointment is pending
	ErrActiveAppointment = errors.New("payments: an appointment is already scheduled")

	// ErrPaymentRequired is returned when no completed, unbooked payment covers the appointment
	ErrPaymentRequired = errors.New("payments: pay the consultation fee before scheduling")

	// ErrDateUnavailable is returned for dates outside the booking window
	ErrDateUnavailable = errors.New("payments: date is outside the booking window")

	// ErrSlotUnavailable is returned for a time slot that has already started or is not offered
	ErrSlotUnavailable = errors.New("payments: time slot is not available")
)
