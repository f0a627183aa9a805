package schedule

import (
	"time"
)

// SlotDuration is the fixed length of a bookable slot.
const SlotDuration = 30 * time.Minute

// WeeklyAvailability is a recurring weekly window during which a doctor is
// nominally bookable. Windows for the same (doctor, weekday) must not overlap.
type WeeklyAvailability struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	DoctorID  int64        `gorm:"column:doctor_id;not null;index:idx_schedules_doctor_day" json:"doctor_id"`
	DayOfWeek time.Weekday `gorm:"column:day_of_week;not null;index:idx_schedules_doctor_day" json:"day_of_week"`

	StartTime TimeOfDay `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   TimeOfDay `gorm:"column:end_time;not null" json:"end_time"`

	IsAvailable bool   `gorm:"column:is_available;not null;default:true" json:"is_available"`
	Notes       string `gorm:"column:notes;type:text" json:"notes"`
}

func (WeeklyAvailability) TableName() string {
	return "booking.doctor_schedules"
}

// TimeSlot is a derived bookable unit. It is never persisted; the resolver
// computes it from a window minus existing appointments.
type TimeSlot struct {
	Time        TimeOfDay `json:"time"`
	IsAvailable bool      `json:"is_available"`
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Strict half-open comparison: intervals that merely touch do not overlap.
// Every overlap check in the system goes through this predicate.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

type SetScheduleCommand struct {
	// ID is zero for a new window, non-zero to update an existing one.
	ID          int64
	DoctorID    int64
	DayOfWeek   time.Weekday
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	IsAvailable bool
	Notes       string
}
