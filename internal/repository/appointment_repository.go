package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// bookingLockKeys derives the advisory-lock key pair serializing bookings per
// (doctor, calendar date). Everything outside that pair proceeds in parallel.
func bookingLockKeys(doctorID int64, date time.Time) (int32, int32) {
	return int32(doctorID), int32(date.Unix() / 86_400)
}

// Book closes the check-then-insert race: the transaction takes a
// pg_advisory_xact_lock scoped to (doctor, date), re-runs the overlap check
// against committed rows, and only then inserts. A concurrent booking for the
// same doctor and date waits on the lock and sees the first insert.
func (r *AppointmentRepository) Book(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k1, k2 := bookingLockKeys(a.DoctorID, a.AppointmentDate)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", k1, k2).Error; err != nil {
			return err
		}

		conflict, err := hasConflict(tx, a.DoctorID, a.AppointmentDate, a.StartTime, a.EndTime, 0)
		if err != nil {
			return err
		}
		if conflict {
			return appointment.ErrTimeSlotUnavailable
		}

		return tx.Create(a).Error
	})
}

func (r *AppointmentRepository) Reschedule(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		k1, k2 := bookingLockKeys(a.DoctorID, a.AppointmentDate)
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", k1, k2).Error; err != nil {
			return err
		}

		conflict, err := hasConflict(tx, a.DoctorID, a.AppointmentDate, a.StartTime, a.EndTime, a.ID)
		if err != nil {
			return err
		}
		if conflict {
			return appointment.ErrTimeSlotUnavailable
		}

		return tx.Save(a).Error
	})
}

// hasConflict is the half-open interval overlap test pushed into SQL:
// start < other.end AND other.start < end.
func hasConflict(tx *gorm.DB, doctorID int64, date time.Time, start, end schedule.TimeOfDay, excludeID int64) (bool, error) {
	q := tx.Model(&appointment.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Where("appointment_date = ?", date).
		Where("status <> ?", appointment.StatusCancelled).
		Where("start_time < ? AND end_time > ?", end.String(), start.String())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":     a.Status,
			"updated_at": a.UpdatedAt,
		}).Error
}

func (r *AppointmentRepository) ListForDay(ctx context.Context, doctorID int64, date time.Time) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Where("appointment_date = ?", date).
		Where("status <> ?", appointment.StatusCancelled).
		Order("start_time").
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_date, start_time").
		Find(&appts).Error
	return appts, err
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date, start_time").
		Find(&appts).Error
	return appts, err
}
