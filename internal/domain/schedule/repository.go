package schedule

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, w *WeeklyAvailability) error
	Update(ctx context.Context, w *WeeklyAvailability) error

	// Delete removes a window permanently. Returns ErrScheduleNotFound if absent.
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (*WeeklyAvailability, error)

	// ListByDoctorDay returns all windows for one doctor on one weekday,
	// ordered by start time.
	ListByDoctorDay(ctx context.Context, doctorID int64, day time.Weekday) ([]*WeeklyAvailability, error)

	// ListByDoctor returns every window of a doctor, ordered by weekday then
	// start time.
	ListByDoctor(ctx context.Context, doctorID int64) ([]*WeeklyAvailability, error)
}
