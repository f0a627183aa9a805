package appointment

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

// State transitions possibilities:
//
//	scheduled → completed
//	scheduled → cancelled
//
// Both terminal states are final; cancelled appointments stay on record and
// free their slot for rebooking.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	PatientID int64 `gorm:"column:patient_id;not null;index" json:"patient_id"`
	DoctorID  int64 `gorm:"column:doctor_id;not null;index:idx_appointments_doctor_date" json:"doctor_id"`

	// AppointmentDate carries date-only semantics and is always normalized to
	// UTC midnight before storage or comparison.
	AppointmentDate time.Time          `gorm:"column:appointment_date;type:date;not null;index:idx_appointments_doctor_date" json:"appointment_date"`
	StartTime       schedule.TimeOfDay `gorm:"column:start_time;not null" json:"start_time"`
	EndTime         schedule.TimeOfDay `gorm:"column:end_time;not null" json:"end_time"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Notes  string `gorm:"column:notes;type:text" json:"notes"`
}

func (Appointment) TableName() string {
	return "booking.appointments"
}

// NormalizeDate strips the time component, yielding midnight UTC of the same
// calendar date. Comparing un-normalized dates causes off-by-one results when
// a stored value carries a non-zero time.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartsAt returns the absolute start instant, in UTC.
func (a *Appointment) StartsAt() time.Time {
	return a.StartTime.At(a.AppointmentDate)
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusScheduled: {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (a *Appointment) Cancel() error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCancelled
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Appointment) Complete() error {
	if !a.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCompleted
	a.UpdatedAt = time.Now().UTC()
	return nil
}

type CreateCommand struct {
	PatientID int64
	DoctorID  int64
	Date      time.Time
	StartTime schedule.TimeOfDay
	EndTime   schedule.TimeOfDay
	Notes     string
}

type UpdateCommand struct {
	Date      *time.Time
	StartTime *schedule.TimeOfDay
	EndTime   *schedule.TimeOfDay
	Status    *Status
	Notes     *string
}
