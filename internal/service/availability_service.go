package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"go.uber.org/zap"
)

// AvailabilityService resolves a doctor's weekly windows into concrete
// 30-minute slots for one calendar date, marking slots that collide with
// existing bookings. Pure read; no side effects.
type AvailabilityService struct {
	userRepo     UserRepository
	scheduleRepo schedule.Repository
	apptRepo     appointment.Repository
	log          *zap.Logger
}

func NewAvailabilityService(
	userRepo UserRepository,
	scheduleRepo schedule.Repository,
	apptRepo appointment.Repository,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{userRepo: userRepo, scheduleRepo: scheduleRepo, apptRepo: apptRepo, log: log}
}

func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, doctorID int64, date time.Time) ([]schedule.TimeSlot, error) {
	doctor, err := s.userRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	if !doctor.IsDoctor() {
		return nil, domain.ErrDoctorNotFound
	}

	day := appointment.NormalizeDate(date)

	windows, err := s.scheduleRepo.ListByDoctorDay(ctx, doctorID, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	if len(windows) == 0 {
		s.log.Debug("no weekly window for doctor",
			zap.Int64("doctor_id", doctorID),
			zap.String("weekday", day.Weekday().String()),
		)
		return nil, schedule.ErrNoSchedule
	}

	booked, err := s.apptRepo.ListForDay(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	var slots []schedule.TimeSlot
	for _, w := range windows {
		// Walk while current < end: a trailing window remainder shorter than
		// the slot length still yields a (partial) slot.
		for current := w.StartTime; current < w.EndTime; current = current.Add(schedule.SlotDuration) {
			slotEnd := current.Add(schedule.SlotDuration)

			free := true
			for _, a := range booked {
				if schedule.Overlaps(current, slotEnd, a.StartTime, a.EndTime) {
					free = false
					break
				}
			}

			slots = append(slots, schedule.TimeSlot{
				Time:        current,
				IsAvailable: free && w.IsAvailable,
			})
		}
	}

	return slots, nil
}
