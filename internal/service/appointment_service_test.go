package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"go.uber.org/zap"
)

func newBooking(appts *fakeAppointmentRepo, policy BookingPolicy) *AppointmentService {
	return NewAppointmentService(appts, nil, policy, zap.NewNop())
}

func createCmd(date time.Time, start, end int) *appointment.CreateCommand {
	return &appointment.CreateCommand{
		PatientID: testPatientID,
		DoctorID:  testDoctorID,
		Date:      date,
		StartTime: at(start/100, start%100),
		EndTime:   at(end/100, end%100),
	}
}

func TestCreateAppointmentValidationOrder(t *testing.T) {
	svc := newBooking(newFakeAppointmentRepo(), BookingPolicy{})
	ctx := context.Background()
	tomorrow := appointment.NormalizeDate(time.Now()).AddDate(0, 0, 1)
	yesterday := appointment.NormalizeDate(time.Now()).AddDate(0, 0, -1)

	// Participant check fires before everything else, even with a past date
	// and an inverted time range.
	cmd := createCmd(yesterday, 1000, 900)
	cmd.DoctorID = 0
	if _, err := svc.CreateAppointment(ctx, cmd, nil); !errors.Is(err, appointment.ErrInvalidParticipants) {
		t.Errorf("zero doctor id: got %v, want ErrInvalidParticipants", err)
	}

	cmd = createCmd(yesterday, 1000, 900)
	cmd.PatientID = -3
	if _, err := svc.CreateAppointment(ctx, cmd, nil); !errors.Is(err, appointment.ErrInvalidParticipants) {
		t.Errorf("negative patient id: got %v, want ErrInvalidParticipants", err)
	}

	// Past date beats the time-range check.
	if _, err := svc.CreateAppointment(ctx, createCmd(yesterday, 1000, 900), nil); !errors.Is(err, appointment.ErrDateInPast) {
		t.Errorf("past date: got %v, want ErrDateInPast", err)
	}

	if _, err := svc.CreateAppointment(ctx, createCmd(tomorrow, 1000, 900), nil); !errors.Is(err, appointment.ErrInvalidTimeRange) {
		t.Errorf("inverted range: got %v, want ErrInvalidTimeRange", err)
	}

	if _, err := svc.CreateAppointment(ctx, createCmd(tomorrow, 900, 900), nil); !errors.Is(err, appointment.ErrInvalidTimeRange) {
		t.Errorf("empty range: got %v, want ErrInvalidTimeRange", err)
	}
}

func TestCreateAppointmentPastDateRejectedRegardless(t *testing.T) {
	svc := newBooking(newFakeAppointmentRepo(), BookingPolicy{})
	yesterday := appointment.NormalizeDate(time.Now()).AddDate(0, 0, -1)

	_, err := svc.CreateAppointment(context.Background(), createCmd(yesterday, 900, 930), nil)
	if !errors.Is(err, appointment.ErrDateInPast) {
		t.Errorf("got %v, want ErrDateInPast", err)
	}
}

func TestCreateAppointmentSuccess(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	monday := nextWeekday(time.Monday)

	a, err := svc.CreateAppointment(context.Background(), createCmd(monday, 900, 930), nil)
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	if a.Status != appointment.StatusScheduled {
		t.Errorf("status = %v, want scheduled", a.Status)
	}
	if a.ID == 0 {
		t.Error("appointment was not assigned an id")
	}
	if !a.AppointmentDate.Equal(monday) {
		t.Errorf("date = %v, want %v (normalized)", a.AppointmentDate, monday)
	}
	if h, m, s := a.AppointmentDate.Clock(); h+m+s != 0 {
		t.Errorf("date carries a time component: %v", a.AppointmentDate)
	}
}

func TestCreateAppointmentConflicts(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()
	monday := nextWeekday(time.Monday)

	if _, err := svc.CreateAppointment(ctx, createCmd(monday, 900, 1000), nil); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// Overlapping range is rejected.
	if _, err := svc.CreateAppointment(ctx, createCmd(monday, 930, 1030), nil); !errors.Is(err, appointment.ErrTimeSlotUnavailable) {
		t.Errorf("overlap: got %v, want ErrTimeSlotUnavailable", err)
	}

	// A range merely touching the boundary is fine.
	if _, err := svc.CreateAppointment(ctx, createCmd(monday, 1000, 1100), nil); err != nil {
		t.Errorf("touching boundary: got %v, want success", err)
	}

	// Same range on another day is fine.
	if _, err := svc.CreateAppointment(ctx, createCmd(nextWeekday(time.Wednesday), 930, 1030), nil); err != nil {
		t.Errorf("other day: got %v, want success", err)
	}
}

func TestConcurrentDoubleBooking(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	monday := nextWeekday(time.Monday)

	const attempts = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateAppointment(context.Background(), createCmd(monday, 900, 930), nil)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, appointment.ErrTimeSlotUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("%d concurrent bookings succeeded, want exactly 1", succeeded)
	}
	if conflicts != attempts-1 {
		t.Errorf("%d conflicts, want %d", conflicts, attempts-1)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()
	monday := nextWeekday(time.Monday)

	a, err := svc.CreateAppointment(ctx, createCmd(monday, 900, 930), nil)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	// Slot is taken while the appointment stands.
	if _, err := svc.CreateAppointment(ctx, createCmd(monday, 900, 930), nil); !errors.Is(err, appointment.ErrTimeSlotUnavailable) {
		t.Fatalf("rebooking while active: got %v, want ErrTimeSlotUnavailable", err)
	}

	cancelled, err := svc.CancelAppointment(ctx, a.ID, nil)
	if err != nil {
		t.Fatalf("cancelling: %v", err)
	}
	if cancelled.Status != appointment.StatusCancelled {
		t.Errorf("status = %v, want cancelled", cancelled.Status)
	}

	// Same window books cleanly once the original is cancelled.
	if _, err := svc.CreateAppointment(ctx, createCmd(monday, 900, 930), nil); err != nil {
		t.Errorf("rebooking after cancel: got %v, want success", err)
	}
}

func TestCancelNotFound(t *testing.T) {
	svc := newBooking(newFakeAppointmentRepo(), BookingPolicy{})
	if _, err := svc.CancelAppointment(context.Background(), 42, nil); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("got %v, want ErrAppointmentNotFound", err)
	}
}

func TestCancelTerminalStates(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()

	a, err := svc.CreateAppointment(ctx, createCmd(nextWeekday(time.Monday), 900, 930), nil)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := svc.CompleteAppointment(ctx, a.ID, nil); err != nil {
		t.Fatalf("completing: %v", err)
	}

	if _, err := svc.CancelAppointment(ctx, a.ID, nil); !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Errorf("cancelling completed: got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestUpdateCannotReviveTerminalAppointment(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()
	monday := nextWeekday(time.Monday)

	cancelled, err := svc.CreateAppointment(ctx, createCmd(monday, 900, 930), nil)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := svc.CancelAppointment(ctx, cancelled.ID, nil); err != nil {
		t.Fatalf("cancelling: %v", err)
	}

	// A cancelled appointment must not come back as scheduled through update.
	back := appointment.StatusScheduled
	if _, err := svc.UpdateAppointment(ctx, cancelled.ID, &appointment.UpdateCommand{Status: &back}, nil); !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Errorf("reviving cancelled: got %v, want ErrInvalidStatusTransition", err)
	}
	stored, err := svc.GetAppointment(ctx, cancelled.ID, nil)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if stored.Status != appointment.StatusCancelled {
		t.Errorf("status = %v, want cancelled to stay terminal", stored.Status)
	}

	completed, err := svc.CreateAppointment(ctx, createCmd(monday, 1000, 1030), nil)
	if err != nil {
		t.Fatalf("booking second: %v", err)
	}
	if _, err := svc.CompleteAppointment(ctx, completed.ID, nil); err != nil {
		t.Fatalf("completing: %v", err)
	}
	toCancelled := appointment.StatusCancelled
	if _, err := svc.UpdateAppointment(ctx, completed.ID, &appointment.UpdateCommand{Status: &toCancelled}, nil); !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Errorf("cancelling completed via update: got %v, want ErrInvalidStatusTransition", err)
	}

	// Restating the current status is a no-op, not a transition.
	same := appointment.StatusCompleted
	if _, err := svc.UpdateAppointment(ctx, completed.ID, &appointment.UpdateCommand{Status: &same}, nil); err != nil {
		t.Errorf("restating status: got %v, want success", err)
	}
}

func TestCancelMinNoticePolicy(t *testing.T) {
	appts := newFakeAppointmentRepo()
	ctx := context.Background()
	tomorrow := appointment.NormalizeDate(time.Now()).AddDate(0, 0, 1)

	noPolicy := newBooking(appts, BookingPolicy{})
	a, err := noPolicy.CreateAppointment(ctx, createCmd(tomorrow, 900, 930), nil)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	// With a 72h minimum notice an appointment starting tomorrow cannot be
	// cancelled any more.
	strict := newBooking(appts, BookingPolicy{CancelMinNotice: 72 * time.Hour})
	if _, err := strict.CancelAppointment(ctx, a.ID, nil); !errors.Is(err, appointment.ErrCancellationTooLate) {
		t.Errorf("inside notice window: got %v, want ErrCancellationTooLate", err)
	}

	// With the policy disabled the same cancellation goes through.
	if _, err := noPolicy.CancelAppointment(ctx, a.ID, nil); err != nil {
		t.Errorf("policy disabled: got %v, want success", err)
	}
}

func TestUpdateAppointment(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()
	monday := nextWeekday(time.Monday)

	if _, err := svc.UpdateAppointment(ctx, 99, &appointment.UpdateCommand{}, nil); !errors.Is(err, appointment.ErrAppointmentNotFound) {
		t.Errorf("missing id: got %v, want ErrAppointmentNotFound", err)
	}

	first, err := svc.CreateAppointment(ctx, createCmd(monday, 900, 930), nil)
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second, err := svc.CreateAppointment(ctx, createCmd(monday, 1000, 1030), nil)
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}

	// Moving the second onto the first conflicts.
	start, end := at(9, 0), at(9, 30)
	_, err = svc.UpdateAppointment(ctx, second.ID, &appointment.UpdateCommand{StartTime: &start, EndTime: &end}, nil)
	if !errors.Is(err, appointment.ErrTimeSlotUnavailable) {
		t.Errorf("conflicting move: got %v, want ErrTimeSlotUnavailable", err)
	}

	// Re-saving an appointment over its own range must not self-conflict.
	updated, err := svc.UpdateAppointment(ctx, first.ID, &appointment.UpdateCommand{StartTime: &start, EndTime: &end}, nil)
	if err != nil {
		t.Fatalf("self-range update: %v", err)
	}
	if updated.StartTime != start || updated.EndTime != end {
		t.Errorf("updated range = %v–%v, want %v–%v", updated.StartTime, updated.EndTime, start, end)
	}

	// A free range is accepted.
	newStart, newEnd := at(11, 0), at(11, 30)
	if _, err := svc.UpdateAppointment(ctx, second.ID, &appointment.UpdateCommand{StartTime: &newStart, EndTime: &newEnd}, nil); err != nil {
		t.Errorf("free range: got %v, want success", err)
	}
}

func TestUpdateAppointmentInvalidRange(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()

	a, err := svc.CreateAppointment(ctx, createCmd(nextWeekday(time.Monday), 900, 930), nil)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	badEnd := at(8, 0)
	if _, err := svc.UpdateAppointment(ctx, a.ID, &appointment.UpdateCommand{EndTime: &badEnd}, nil); !errors.Is(err, appointment.ErrInvalidTimeRange) {
		t.Errorf("got %v, want ErrInvalidTimeRange", err)
	}
}

func TestPatientCannotTouchOthersAppointment(t *testing.T) {
	appts := newFakeAppointmentRepo()
	svc := newBooking(appts, BookingPolicy{})
	ctx := context.Background()

	a, err := svc.CreateAppointment(ctx, createCmd(nextWeekday(time.Monday), 900, 930), nil)
	if err != nil {
		t.Fatalf("booking: %v", err)
	}

	stranger := &Caller{UserID: 777, Role: "patient"}
	if _, err := svc.CancelAppointment(ctx, a.ID, stranger); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger cancel: got %v, want ErrForbidden", err)
	}

	owner := &Caller{UserID: testPatientID, Role: "patient"}
	if _, err := svc.GetAppointment(ctx, a.ID, owner); err != nil {
		t.Errorf("owner read: got %v, want success", err)
	}
}
