package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrTimeSlotUnavailable     = errors.New("time slot is not available")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")

	ErrInvalidParticipants = errors.New("doctor id and patient id must be positive")
	ErrDateInPast          = errors.New("appointment date cannot be in the past")
	ErrInvalidTimeRange    = errors.New("appointment start time must be before end time")
	ErrInvalidStatus       = errors.New("invalid appointment status")

	// ErrCancellationTooLate is returned only when a minimum cancellation
	// notice is configured and the appointment starts inside that window.
	ErrCancellationTooLate = errors.New("appointment can no longer be cancelled this close to its start")
)
