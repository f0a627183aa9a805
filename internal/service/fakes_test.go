package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/careslot/internal/domain/schedule"
)

// In-memory repository doubles. The appointment fake serializes Book and
// Reschedule behind a mutex and repeats the overlap check inside the critical
// section, matching the atomicity contract of the real store.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = int64(len(r.users) + 1)
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateLoginAttempt(_ context.Context, _ int64, _ bool) error { return nil }

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

// failingUserRepo simulates an unreachable user store.
type failingUserRepo struct {
	err error
}

func (r *failingUserRepo) Create(_ context.Context, _ *domain.User) error { return r.err }

func (r *failingUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, r.err
}

func (r *failingUserRepo) GetByID(_ context.Context, _ int64) (*domain.User, error) {
	return nil, r.err
}

func (r *failingUserRepo) ListByRole(_ context.Context, _ domain.Role) ([]*domain.User, error) {
	return nil, r.err
}

func (r *failingUserRepo) UpdateLoginAttempt(_ context.Context, _ int64, _ bool) error {
	return r.err
}

func (r *failingUserRepo) UpdatePassword(_ context.Context, _ int64, _ string) error { return r.err }

type fakeScheduleRepo struct {
	mu      sync.Mutex
	nextID  int64
	windows map[int64]*schedule.WeeklyAvailability
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{windows: make(map[int64]*schedule.WeeklyAvailability)}
}

func (r *fakeScheduleRepo) Create(_ context.Context, w *schedule.WeeklyAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	w.ID = r.nextID
	cp := *w
	r.windows[w.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, w *schedule.WeeklyAvailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[w.ID]; !ok {
		return schedule.ErrScheduleNotFound
	}
	cp := *w
	r.windows[w.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return schedule.ErrScheduleNotFound
	}
	delete(r.windows, id)
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id int64) (*schedule.WeeklyAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return nil, schedule.ErrScheduleNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeScheduleRepo) ListByDoctorDay(_ context.Context, doctorID int64, day time.Weekday) ([]*schedule.WeeklyAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.WeeklyAvailability
	for _, w := range r.windows {
		if w.DoctorID == doctorID && w.DayOfWeek == day {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *fakeScheduleRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*schedule.WeeklyAvailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.WeeklyAvailability
	for _, w := range r.windows {
		if w.DoctorID == doctorID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	appts  map[int64]*appointment.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[int64]*appointment.Appointment)}
}

func (r *fakeAppointmentRepo) conflictLocked(doctorID int64, date time.Time, start, end schedule.TimeOfDay, excludeID int64) bool {
	for _, a := range r.appts {
		if a.ID == excludeID || a.DoctorID != doctorID || !a.AppointmentDate.Equal(date) {
			continue
		}
		if a.Status == appointment.StatusCancelled {
			continue
		}
		if schedule.Overlaps(start, end, a.StartTime, a.EndTime) {
			return true
		}
	}
	return false
}

func (r *fakeAppointmentRepo) Book(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictLocked(a.DoctorID, a.AppointmentDate, a.StartTime, a.EndTime, 0) {
		return appointment.ErrTimeSlotUnavailable
	}
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Reschedule(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[a.ID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	if r.conflictLocked(a.DoctorID, a.AppointmentDate, a.StartTime, a.EndTime, a.ID) {
		return appointment.ErrTimeSlotUnavailable
	}
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.appts[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.Status = a.Status
	stored.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *fakeAppointmentRepo) ListForDay(_ context.Context, doctorID int64, date time.Time) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appts {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) && a.Status != appointment.StatusCancelled {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appts {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID int64) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.appts {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}
