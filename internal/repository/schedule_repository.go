package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, w *schedule.WeeklyAvailability) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *ScheduleRepository) Update(ctx context.Context, w *schedule.WeeklyAvailability) error {
	res := r.db.WithContext(ctx).
		Model(&schedule.WeeklyAvailability{}).
		Where("id = ?", w.ID).
		Updates(map[string]any{
			"doctor_id":    w.DoctorID,
			"day_of_week":  w.DayOfWeek,
			"start_time":   w.StartTime,
			"end_time":     w.EndTime,
			"is_available": w.IsAvailable,
			"notes":        w.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&schedule.WeeklyAvailability{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*schedule.WeeklyAvailability, error) {
	var w schedule.WeeklyAvailability
	err := r.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *ScheduleRepository) ListByDoctorDay(ctx context.Context, doctorID int64, day time.Weekday) ([]*schedule.WeeklyAvailability, error) {
	var windows []*schedule.WeeklyAvailability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, day).
		Order("start_time").
		Find(&windows).Error
	return windows, err
}

func (r *ScheduleRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*schedule.WeeklyAvailability, error) {
	var windows []*schedule.WeeklyAvailability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week, start_time").
		Find(&windows).Error
	return windows, err
}
