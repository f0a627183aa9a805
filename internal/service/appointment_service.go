package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
	"go.uber.org/zap"
)

// BookingPolicy holds tunable business rules around bookings.
type BookingPolicy struct {
	// CancelMinNotice rejects cancellations arriving closer to the start of
	// the appointment than this. Zero disables the rule.
	CancelMinNotice time.Duration
}

type AppointmentService struct {
	repo     appointment.Repository
	auditSvc *AuditService
	policy   BookingPolicy
	log      *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	auditSvc *AuditService,
	policy BookingPolicy,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, auditSvc: auditSvc, policy: policy, log: log}
}

// CreateAppointment books a new slot. Checks run in a fixed order and the
// first failure wins: participants, date not in the past, time range,
// then conflict against the doctor's existing non-cancelled bookings.
// The repository repeats the conflict check inside the committing
// transaction, so two concurrent calls for overlapping ranges cannot both
// succeed.
func (s *AppointmentService) CreateAppointment(ctx context.Context, cmd *appointment.CreateCommand, caller *Caller) (*appointment.Appointment, error) {
	if cmd.DoctorID <= 0 || cmd.PatientID <= 0 {
		return nil, appointment.ErrInvalidParticipants
	}

	date := appointment.NormalizeDate(cmd.Date)
	today := appointment.NormalizeDate(time.Now())
	if date.Before(today) {
		return nil, appointment.ErrDateInPast
	}

	if cmd.StartTime >= cmd.EndTime {
		return nil, appointment.ErrInvalidTimeRange
	}

	if err := s.checkConflict(ctx, cmd.DoctorID, date, cmd.StartTime, cmd.EndTime, 0); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &appointment.Appointment{
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		AppointmentDate: date,
		StartTime:       cmd.StartTime,
		EndTime:         cmd.EndTime,
		Status:          appointment.StatusScheduled,
		Notes:           cmd.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Book(ctx, a); err != nil {
		if err == appointment.ErrTimeSlotUnavailable {
			return nil, err
		}
		s.log.Error("failed to book appointment", zap.Error(err))
		return nil, fmt.Errorf("booking appointment: %w", err)
	}

	s.audit(ctx, caller, "create", a.ID)

	return a, nil
}

// UpdateAppointment reschedules or re-statuses an existing appointment. The
// conflict re-check excludes the appointment itself.
func (s *AppointmentService) UpdateAppointment(ctx context.Context, id int64, cmd *appointment.UpdateCommand, caller *Caller) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appointment.ErrAppointmentNotFound
	}

	if err := s.authorizeParticipant(caller, a); err != nil {
		return nil, err
	}

	if cmd.Date != nil {
		a.AppointmentDate = appointment.NormalizeDate(*cmd.Date)
	}
	if cmd.StartTime != nil {
		a.StartTime = *cmd.StartTime
	}
	if cmd.EndTime != nil {
		a.EndTime = *cmd.EndTime
	}
	if cmd.Status != nil {
		if !cmd.Status.IsValid() {
			return nil, appointment.ErrInvalidStatus
		}
		if *cmd.Status != a.Status {
			if !a.CanTransitionTo(*cmd.Status) {
				return nil, appointment.ErrInvalidStatusTransition
			}
			a.Status = *cmd.Status
		}
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}

	if a.StartTime >= a.EndTime {
		return nil, appointment.ErrInvalidTimeRange
	}

	if err := s.checkConflict(ctx, a.DoctorID, a.AppointmentDate, a.StartTime, a.EndTime, a.ID); err != nil {
		return nil, err
	}

	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.Reschedule(ctx, a); err != nil {
		if err == appointment.ErrTimeSlotUnavailable {
			return nil, err
		}
		s.log.Error("failed to reschedule appointment", zap.Int64("appointment_id", id), zap.Error(err))
		return nil, fmt.Errorf("rescheduling appointment: %w", err)
	}

	s.audit(ctx, caller, "update", a.ID)

	return a, nil
}

// CancelAppointment marks an appointment cancelled, freeing its slot. When a
// minimum cancellation notice is configured, cancellations inside that window
// are rejected.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id int64, caller *Caller) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appointment.ErrAppointmentNotFound
	}

	if err := s.authorizeParticipant(caller, a); err != nil {
		return nil, err
	}

	if s.policy.CancelMinNotice > 0 {
		if time.Until(a.StartsAt()) < s.policy.CancelMinNotice {
			return nil, appointment.ErrCancellationTooLate
		}
	}

	if err := a.Cancel(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.audit(ctx, caller, "update", a.ID)

	return a, nil
}

func (s *AppointmentService) CompleteAppointment(ctx context.Context, id int64, caller *Caller) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appointment.ErrAppointmentNotFound
	}

	if err := a.Complete(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.audit(ctx, caller, "update", a.ID)

	return a, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id int64, caller *Caller) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appointment.ErrAppointmentNotFound
	}

	if err := s.authorizeParticipant(caller, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *AppointmentService) GetPatientAppointments(ctx context.Context, patientID int64) ([]*appointment.Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) GetDoctorAppointments(ctx context.Context, doctorID int64) ([]*appointment.Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID)
}

// checkConflict applies the canonical half-open overlap predicate against the
// doctor's non-cancelled bookings on the same date. excludeID skips the
// appointment being rescheduled; zero excludes nothing.
func (s *AppointmentService) checkConflict(ctx context.Context, doctorID int64, date time.Time, start, end schedule.TimeOfDay, excludeID int64) error {
	existing, err := s.repo.ListForDay(ctx, doctorID, date)
	if err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if schedule.Overlaps(start, end, other.StartTime, other.EndTime) {
			return appointment.ErrTimeSlotUnavailable
		}
	}
	return nil
}

// authorizeParticipant rejects patients touching appointments that are not
// theirs. Doctors and admins pass; a nil caller means an internal call.
func (s *AppointmentService) authorizeParticipant(caller *Caller, a *appointment.Appointment) error {
	if caller == nil {
		return nil
	}
	if caller.Role == "patient" && caller.UserID != a.PatientID {
		return ErrForbidden
	}
	return nil
}

func (s *AppointmentService) audit(ctx context.Context, caller *Caller, action string, apptID int64) {
	if s.auditSvc == nil || caller == nil {
		return
	}
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       caller.UserID,
		UserRole:     caller.Role,
		Action:       action,
		ResourceType: "appointment",
		ResourceID:   strconv.FormatInt(apptID, 10),
		IPAddress:    caller.IP,
		RequestID:    caller.RequestID,
	})
}

// Caller identifies the authenticated principal behind a service call, for
// authorization and audit.
type Caller struct {
	UserID    int64
	Role      string
	IP        string
	RequestID string
}
