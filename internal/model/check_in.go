package model

import "time"

// Check-in sources.
const (
	CheckInSourceSelf   = "SELF"
	CheckInSourceManual = "MANUAL"
)

// CheckIn time tracked against a shift, table check_ins
type CheckIn struct {
	CheckInID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"check_in_id"`
	ShiftID         string     `gorm:"type:uuid;not null"                             json:"shift_id"`
	VolunteerID     string     `gorm:"type:uuid;not null"                             json:"volunteer_id"`
	CheckInTime     time.Time  `gorm:"not null"                                       json:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Source          string     `gorm:"type:varchar(10);not null;default:'SELF'"       json:"source"`
	Notes           string     `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	BaseModel

	Shift     *Shift `gorm:"foreignKey:ShiftID;references:ShiftID"     json:"shift,omitempty"`
	Volunteer *User  `gorm:"foreignKey:VolunteerID;references:UserID" json:"volunteer,omitempty"`
}

// TableName table name
func (CheckIn) TableName() string { return "check_ins" }

// IsOpen the volunteer has not checked out yet.
func (c *CheckIn) IsOpen() bool { return c.CheckOutTime == nil }

// Close records the check-out and derives the whole-minute duration.
// A check-out before the check-in is clamped to zero minutes.
func (c *CheckIn) Close(out time.Time) {
	c.CheckOutTime = &out
	minutes := int(out.Sub(c.CheckInTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	c.DurationMinutes = &minutes
}

// Hours the logged duration in hours, zero while still checked in.
func (c *CheckIn) Hours() float64 {
	if c.DurationMinutes == nil {
		return 0
	}
	return float64(*c.DurationMinutes) / 60
}
