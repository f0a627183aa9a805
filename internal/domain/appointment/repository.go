package appointment

import (
	"context"
	"time"
)

type Repository interface {
	// Book inserts a new appointment after re-checking, inside one atomic
	// unit, that no non-cancelled appointment of the same doctor on the same
	// date overlaps it. Returns ErrTimeSlotUnavailable on conflict. Two
	// concurrent Book calls for overlapping ranges must not both succeed.
	Book(ctx context.Context, a *Appointment) error

	// Reschedule persists changed date/time/status for an existing
	// appointment under the same atomic conflict re-check, excluding the
	// appointment itself from the comparison set.
	Reschedule(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id int64) (*Appointment, error)

	// UpdateStatus persists a status change done through the entity's
	// transition methods.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// ListForDay returns a doctor's non-cancelled appointments on one
	// calendar date (UTC-midnight normalized), ordered by start time.
	ListForDay(ctx context.Context, doctorID int64, date time.Time) ([]*Appointment, error)

	ListByDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Appointment, error)
}
