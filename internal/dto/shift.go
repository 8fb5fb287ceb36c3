package dto

// ── shifts ──

// CreateShiftRequest date and clock times arrive as separate form fields
// and are composed in the configured shift timezone.
type CreateShiftRequest struct {
	Title         string             `json:"title"          binding:"required,min=2,max=200"`
	Description   string             `json:"description"    binding:"omitempty,max=4000"`
	Location      string             `json:"location"       binding:"omitempty,max=200"`
	Date          string             `json:"date"           binding:"required,isodate"`
	StartTime     string             `json:"start_time"     binding:"required,hhmm"`
	EndTime       string             `json:"end_time"       binding:"required,hhmm"`
	MaxVolunteers int                `json:"max_volunteers" binding:"required,min=1,max=1000"`
	GroupID       *string            `json:"group_id"       binding:"omitempty,uuid"`
	Recurrence    *RecurrenceRequest `json:"recurrence"`
}

// RecurrenceRequest repeats a new shift; one of count or until is required
type RecurrenceRequest struct {
	Freq      string   `json:"freq"       binding:"required,oneof=DAILY WEEKLY"`
	Interval  int      `json:"interval"   binding:"omitempty,min=1,max=52"`
	Count     int      `json:"count"      binding:"omitempty,min=1"`
	Until     string   `json:"until"      binding:"omitempty,isodate"`
	ByWeekday []string `json:"by_weekday" binding:"omitempty,dive,oneof=MO TU WE TH FR SA SU"`
}

// UpdateShiftRequest partial update; missing date/time parts keep their current value
type UpdateShiftRequest struct {
	Title         *string `json:"title"          binding:"omitempty,min=2,max=200"`
	Description   *string `json:"description"    binding:"omitempty,max=4000"`
	Location      *string `json:"location"       binding:"omitempty,max=200"`
	Date          *string `json:"date"           binding:"omitempty,isodate"`
	StartTime     *string `json:"start_time"     binding:"omitempty,hhmm"`
	EndTime       *string `json:"end_time"       binding:"omitempty,hhmm"`
	MaxVolunteers *int    `json:"max_volunteers" binding:"omitempty,min=1,max=1000"`
	GroupID       *string `json:"group_id"       binding:"omitempty,uuid"`
	Version       int     `json:"version"        binding:"required,min=1"`
}

// CancelShiftRequest admin cancels a whole shift
type CancelShiftRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// ShiftListRequest list filters
type ShiftListRequest struct {
	PaginationRequest
	DateRangeRequest
	Bucket  string `form:"bucket"   binding:"omitempty,oneof=upcoming past active vacant"`
	Q       string `form:"q"        binding:"omitempty,max=100"`
	GroupID string `form:"group_id" binding:"omitempty,uuid"`
	Status  string `form:"status"   binding:"omitempty,oneof=OPEN FULL CANCELLED COMPLETED"`
}

// MySignupsRequest caller's own signups
type MySignupsRequest struct {
	PaginationRequest
	Bucket string `form:"bucket" binding:"omitempty,oneof=upcoming past active vacant"`
}

// ShiftResponse shift plus viewer-specific fields
type ShiftResponse struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Location          string      `json:"location,omitempty"`
	StartTime         string      `json:"start_time"`
	EndTime           string      `json:"end_time"`
	Date              string      `json:"date"`
	StartClock        string      `json:"start_clock"`
	EndClock          string      `json:"end_clock"`
	MaxVolunteers     int         `json:"max_volunteers"`
	CurrentVolunteers int         `json:"current_volunteers"`
	SpotsLeft         int         `json:"spots_left"`
	Status            string      `json:"status"`
	Bucket            string      `json:"bucket"`
	Group             *GroupBrief `json:"group,omitempty"`
	SeriesID          string      `json:"series_id,omitempty"`
	CancelReason      string      `json:"cancel_reason,omitempty"`
	IsSignedUp        bool        `json:"is_signed_up"`
	CanCancel         bool        `json:"can_cancel"`
	Version           int         `json:"version"`
}

// ShiftDetailResponse shift with roster (roster only for admins of the shift)
type ShiftDetailResponse struct {
	ShiftResponse
	Roster []RosterEntryResponse `json:"roster,omitempty"`
}

// CreateShiftResponse one or more created shifts (recurrence)
type CreateShiftResponse struct {
	SeriesID string          `json:"series_id,omitempty"`
	Shifts   []ShiftResponse `json:"shifts"`
}

// RosterEntryResponse one confirmed volunteer
type RosterEntryResponse struct {
	SignupID    string `json:"signup_id"`
	VolunteerID string `json:"volunteer_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	SignedUpAt  string `json:"signed_up_at"`
}

// SignupResponse result of a signup
type SignupResponse struct {
	SignupID   string        `json:"signup_id"`
	SignedUpAt string        `json:"signed_up_at"`
	Shift      ShiftResponse `json:"shift"`
}

// GroupBrief embedded group reference
type GroupBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ImportShiftsRequest multipart form fields accompanying an .ics upload
type ImportShiftsRequest struct {
	MaxVolunteers int     `form:"max_volunteers" binding:"required,min=1,max=1000"`
	GroupID       *string `form:"group_id"       binding:"omitempty,uuid"`
}

// ImportShiftsResponse calendar import summary
type ImportShiftsResponse struct {
	Events  int `json:"events"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
