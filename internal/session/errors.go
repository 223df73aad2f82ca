package session

import "errors"

var (
	// ErrMissingUserID is returned when saving a user without an id
	ErrMissingUserID = errors.New("session: user id is required")

	// ErrAppointmentActive is returned by BookAppointment when one is already pending
	ErrAppointmentActive = errors.New("session: an appointment is already scheduled")

	// ErrPaymentRequired is returned by BookAppointment when no unspent payment matches
	ErrPaymentRequired = errors.New("session: no unused payment covers this appointment")
)
