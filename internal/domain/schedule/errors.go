package schedule

import "errors"

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleOverlap  = errors.New("schedule overlaps with an existing schedule")
	ErrInvalidTimeRange = errors.New("schedule start time must be before end time")

	// ErrNoSchedule means the doctor has no weekly window for the requested
	// weekday at all. A fully booked day is not this error; it yields slots
	// with is_available=false instead.
	ErrNoSchedule = errors.New("no schedule found for this day")
)
