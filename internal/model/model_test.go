package model

import (
	"testing"
	"time"
)

func TestShift_SyncCapacityStatus(t *testing.T) {
	s := &Shift{MaxVolunteers: 2, CurrentVolunteers: 2, Status: ShiftOpen}
	s.SyncCapacityStatus()
	if s.Status != ShiftFull {
		t.Errorf("expected FULL, got %s", s.Status)
	}

	s.CurrentVolunteers = 1
	s.SyncCapacityStatus()
	if s.Status != ShiftOpen {
		t.Errorf("expected OPEN, got %s", s.Status)
	}

	s.Status = ShiftCancelled
	s.CurrentVolunteers = 2
	s.SyncCapacityStatus()
	if s.Status != ShiftCancelled {
		t.Errorf("cancelled shift must stay cancelled, got %s", s.Status)
	}
}

func TestShift_SpotsLeft(t *testing.T) {
	if got := (&Shift{MaxVolunteers: 5, CurrentVolunteers: 3}).SpotsLeft(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
	if got := (&Shift{MaxVolunteers: 1, CurrentVolunteers: 3}).SpotsLeft(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestCheckIn_Close(t *testing.T) {
	in := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := &CheckIn{CheckInTime: in}
	if !c.IsOpen() {
		t.Fatal("new check-in should be open")
	}

	c.Close(in.Add(2*time.Hour + 30*time.Minute + 59*time.Second))
	if c.IsOpen() {
		t.Error("closed check-in should not be open")
	}
	if *c.DurationMinutes != 150 {
		t.Errorf("expected 150 minutes, got %d", *c.DurationMinutes)
	}
	if c.Hours() != 2.5 {
		t.Errorf("expected 2.5 hours, got %v", c.Hours())
	}

	c2 := &CheckIn{CheckInTime: in}
	c2.Close(in.Add(-time.Minute))
	if *c2.DurationMinutes != 0 {
		t.Errorf("negative duration must clamp to 0, got %d", *c2.DurationMinutes)
	}
}

func TestRoles(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleVolunteer, RoleGroupAdmin, RolePending} {
		if !IsValidRole(r) {
			t.Errorf("%s should be valid", r)
		}
	}
	if IsValidRole("admin") {
		t.Error("roles are case-sensitive")
	}
	if CanVolunteer(RolePending) {
		t.Error("pending users cannot volunteer")
	}
	if !CanVolunteer(RoleGroupAdmin) {
		t.Error("group admins can volunteer")
	}
}

func TestShiftBuckets(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := &Shift{StartTime: start, EndTime: start.Add(3 * time.Hour), MaxVolunteers: 2, Status: ShiftOpen}

	tests := []struct {
		name   string
		now    time.Time
		bucket string
	}{
		{"before start", start.Add(-time.Minute), BucketUpcoming},
		{"at start", start, BucketActive},
		{"during", start.Add(time.Hour), BucketActive},
		{"at end", start.Add(3 * time.Hour), BucketActive},
		{"after end", start.Add(3*time.Hour + time.Second), BucketPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.BucketAt(tt.now); got != tt.bucket {
				t.Errorf("BucketAt = %s, want %s", got, tt.bucket)
			}
			if !s.InBucket(tt.bucket, tt.now) {
				t.Errorf("InBucket(%s) = false", tt.bucket)
			}
		})
	}
}

func TestShiftInBucket_Vacant(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	now := start.Add(-24 * time.Hour)
	s := &Shift{StartTime: start, EndTime: start.Add(time.Hour), MaxVolunteers: 2, CurrentVolunteers: 1, Status: ShiftOpen}

	if !s.InBucket(BucketVacant, now) {
		t.Error("open shift with spots should be vacant")
	}
	s.CurrentVolunteers = 2
	s.SyncCapacityStatus()
	if s.InBucket(BucketVacant, now) {
		t.Error("full shift should not be vacant")
	}
	s.Status = ShiftCancelled
	if s.InBucket(BucketUpcoming, now) {
		t.Error("cancelled shift should not be upcoming")
	}
	if !s.InBucket("", now) {
		t.Error("empty bucket matches everything")
	}
}

func TestShiftOverlaps(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := &Shift{StartTime: start, EndTime: start.Add(2 * time.Hour)}

	if !s.Overlaps(start.Add(time.Hour), start.Add(3*time.Hour)) {
		t.Error("expected overlap")
	}
	if s.Overlaps(start.Add(2*time.Hour), start.Add(3*time.Hour)) {
		t.Error("back-to-back shifts must not overlap")
	}
	if !s.HasStarted(start) || s.HasStarted(start.Add(-time.Second)) {
		t.Error("HasStarted boundary wrong")
	}
}
