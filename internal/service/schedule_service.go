package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"go.uber.org/zap"
)

// ScheduleService manages a doctor's recurring weekly availability windows.
// Windows for the same (doctor, weekday) must never overlap; that invariant
// is what lets the availability resolver emit slots per window without
// deduplication.
type ScheduleService struct {
	repo     schedule.Repository
	userRepo UserRepository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewScheduleService(
	repo schedule.Repository,
	userRepo UserRepository,
	auditSvc *AuditService,
	log *zap.Logger,
) *ScheduleService {
	return &ScheduleService{repo: repo, userRepo: userRepo, auditSvc: auditSvc, log: log}
}

// SetSchedule inserts a new window (cmd.ID == 0) or updates an existing one.
// The overlap check compares against every other window of the same
// (doctor, weekday) with the canonical half-open predicate, so windows that
// merely touch at a boundary are accepted.
func (s *ScheduleService) SetSchedule(ctx context.Context, cmd *schedule.SetScheduleCommand, caller *Caller) (*schedule.WeeklyAvailability, error) {
	doctor, err := s.userRepo.GetByID(ctx, cmd.DoctorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	if !doctor.IsDoctor() {
		return nil, domain.ErrDoctorNotFound
	}

	if cmd.StartTime >= cmd.EndTime {
		return nil, schedule.ErrInvalidTimeRange
	}

	existing, err := s.repo.ListByDoctorDay(ctx, cmd.DoctorID, cmd.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	for _, other := range existing {
		if other.ID == cmd.ID {
			continue
		}
		if schedule.Overlaps(cmd.StartTime, cmd.EndTime, other.StartTime, other.EndTime) {
			return nil, schedule.ErrScheduleOverlap
		}
	}

	w := &schedule.WeeklyAvailability{
		ID:          cmd.ID,
		DoctorID:    cmd.DoctorID,
		DayOfWeek:   cmd.DayOfWeek,
		StartTime:   cmd.StartTime,
		EndTime:     cmd.EndTime,
		IsAvailable: cmd.IsAvailable,
		Notes:       cmd.Notes,
	}

	if cmd.ID == 0 {
		err = s.repo.Create(ctx, w)
	} else {
		err = s.repo.Update(ctx, w)
	}
	if err != nil {
		s.log.Error("failed to persist schedule",
			zap.Int64("doctor_id", cmd.DoctorID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("persisting schedule: %w", err)
	}

	s.audit(ctx, caller, "update", w.ID)

	return w, nil
}

func (s *ScheduleService) GetDoctorSchedules(ctx context.Context, doctorID int64) ([]*schedule.WeeklyAvailability, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int64, caller *Caller) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, caller, "delete", id)
	return nil
}

func (s *ScheduleService) audit(ctx context.Context, caller *Caller, action string, scheduleID int64) {
	if s.auditSvc == nil || caller == nil {
		return
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     caller.Role,
		Action:       action,
		ResourceType: "schedule",
		ResourceID:   strconv.FormatInt(scheduleID, 10),
		IPAddress:    caller.IP,
		RequestID:    caller.RequestID,
	})
}
