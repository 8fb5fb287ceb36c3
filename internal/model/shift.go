package model

import "time"

// Shift statuses.
const (
	ShiftOpen      = "OPEN"
	ShiftFull      = "FULL"
	ShiftCancelled = "CANCELLED"
	ShiftCompleted = "COMPLETED"
)

// Signup statuses.
const (
	SignupConfirmed = "CONFIRMED"
	SignupCancelled = "CANCELLED"
)

// Shift a scheduled volunteer time slot with a capacity, table shifts
type Shift struct {
	ShiftID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	Title             string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description       string    `gorm:"type:text"                                      json:"description,omitempty"`
	Location          string    `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	StartTime         time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime           time.Time `gorm:"not null"                                       json:"end_time"`
	MaxVolunteers     int       `gorm:"not null"                                       json:"max_volunteers"`
	CurrentVolunteers int       `gorm:"not null;default:0"                             json:"current_volunteers"`
	Status            string    `gorm:"type:varchar(20);not null;default:'OPEN'"       json:"status"`
	GroupID           *string   `gorm:"type:uuid"                                      json:"group_id,omitempty"`
	SeriesID          *string   `gorm:"type:uuid"                                      json:"series_id,omitempty"`
	CancelReason      string    `gorm:"type:varchar(500)"                              json:"cancel_reason,omitempty"`
	VersionedModel

	Group   *Group        `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
	Signups []ShiftSignup `gorm:"foreignKey:ShiftID"                    json:"signups,omitempty"`
}

// TableName table name
func (Shift) TableName() string { return "shifts" }

// SpotsLeft remaining capacity, never negative.
func (s *Shift) SpotsLeft() int {
	if n := s.MaxVolunteers - s.CurrentVolunteers; n > 0 {
		return n
	}
	return 0
}

// IsClosed CANCELLED and COMPLETED shifts accept no roster changes.
func (s *Shift) IsClosed() bool {
	return s.Status == ShiftCancelled || s.Status == ShiftCompleted
}

// SyncCapacityStatus flips OPEN/FULL to match the current head count.
// Closed shifts are left untouched.
func (s *Shift) SyncCapacityStatus() {
	if s.IsClosed() {
		return
	}
	if s.CurrentVolunteers >= s.MaxVolunteers {
		s.Status = ShiftFull
	} else {
		s.Status = ShiftOpen
	}
}

// ShiftSignup one volunteer on one shift's roster, table shift_signups
type ShiftSignup struct {
	SignupID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"signup_id"`
	ShiftID     string     `gorm:"type:uuid;not null"                             json:"shift_id"`
	VolunteerID string     `gorm:"type:uuid;not null"                             json:"volunteer_id"`
	Status      string     `gorm:"type:varchar(20);not null;default:'CONFIRMED'"  json:"status"`
	SignedUpAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"signed_up_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy *string    `gorm:"type:uuid" json:"cancelled_by,omitempty"`

	Shift     *Shift `gorm:"foreignKey:ShiftID;references:ShiftID"     json:"shift,omitempty"`
	Volunteer *User  `gorm:"foreignKey:VolunteerID;references:UserID" json:"volunteer,omitempty"`
}

// TableName table name
func (ShiftSignup) TableName() string { return "shift_signups" }

// List buckets. A shift is in exactly one of upcoming/active/past;
// vacant is the subset of upcoming shifts still taking signups.
const (
	BucketUpcoming = "upcoming"
	BucketActive   = "active"
	BucketPast     = "past"
	BucketVacant   = "vacant"
)

// BucketAt temporal bucket of the shift at now.
func (s *Shift) BucketAt(now time.Time) string {
	switch {
	case now.Before(s.StartTime):
		return BucketUpcoming
	case now.After(s.EndTime):
		return BucketPast
	default:
		return BucketActive
	}
}

// InBucket reports whether the shift belongs in bucket at now. Cancelled
// shifts only ever show up under past. An empty bucket matches everything.
func (s *Shift) InBucket(bucket string, now time.Time) bool {
	switch bucket {
	case "":
		return true
	case BucketPast:
		return s.BucketAt(now) == BucketPast
	case BucketUpcoming, BucketActive:
		return s.Status != ShiftCancelled && s.BucketAt(now) == bucket
	case BucketVacant:
		return s.Status == ShiftOpen && s.SpotsLeft() > 0 && s.BucketAt(now) == BucketUpcoming
	}
	return false
}

// HasStarted reports whether signups are closed because the shift began.
func (s *Shift) HasStarted(now time.Time) bool {
	return !now.Before(s.StartTime)
}

// Overlaps reports whether [start, end) intersects the shift.
func (s *Shift) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}
