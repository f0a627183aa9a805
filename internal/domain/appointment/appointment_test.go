package appointment

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"already midnight utc",
			time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"midday utc",
			time.Date(2025, 6, 2, 13, 45, 12, 0, time.UTC),
			time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"early morning east of utc crosses the date line",
			time.Date(2025, 6, 2, 3, 0, 0, 0, loc),
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDate(tt.in); !got.Equal(tt.want) {
				t.Errorf("NormalizeDate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	a := &Appointment{Status: StatusScheduled}
	if err := a.Complete(); err != nil {
		t.Fatalf("completing scheduled: %v", err)
	}
	if err := a.Cancel(); err != ErrInvalidStatusTransition {
		t.Errorf("cancelling completed: got %v, want ErrInvalidStatusTransition", err)
	}

	b := &Appointment{Status: StatusScheduled}
	if err := b.Cancel(); err != nil {
		t.Fatalf("cancelling scheduled: %v", err)
	}
	if err := b.Complete(); err != ErrInvalidStatusTransition {
		t.Errorf("completing cancelled: got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusScheduled, StatusCompleted, StatusCancelled} {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("no_show").IsValid() {
		t.Error("unknown status accepted")
	}
}
