package dto

import "time"

// ── check-ins ──

// CheckInRequest volunteer checks in to a shift
type CheckInRequest struct {
	ShiftID string `json:"shift_id" binding:"required,uuid"`
}

// CheckOutRequest volunteer checks out, by check-in id or by shift.
// One of the two is required; check_in_id wins when both are set.
type CheckOutRequest struct {
	CheckInID string `json:"check_in_id" binding:"omitempty,uuid"`
	ShiftID   string `json:"shift_id"    binding:"omitempty,uuid"`
}

// ManualCheckInRequest admin records hours after the fact
type ManualCheckInRequest struct {
	ShiftID      string     `json:"shift_id"       binding:"required,uuid"`
	VolunteerID  string     `json:"volunteer_id"   binding:"required,uuid"`
	CheckInTime  time.Time  `json:"check_in_time"  binding:"required"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Notes        string     `json:"notes"          binding:"omitempty,max=500"`
}

// UpdateCheckInRequest admin correction
type UpdateCheckInRequest struct {
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Notes        *string    `json:"notes" binding:"omitempty,max=500"`
}

// CheckInListRequest caller's history
type CheckInListRequest struct {
	PaginationRequest
	DateRangeRequest
}

// CheckInResponse check-in record
type CheckInResponse struct {
	ID              string  `json:"id"`
	ShiftID         string  `json:"shift_id"`
	ShiftTitle      string  `json:"shift_title,omitempty"`
	VolunteerID     string  `json:"volunteer_id"`
	VolunteerName   string  `json:"volunteer_name,omitempty"`
	CheckInTime     string  `json:"check_in_time"`
	CheckOutTime    string  `json:"check_out_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Hours           float64 `json:"hours"`
	Source          string  `json:"source"`
	Notes           string  `json:"notes,omitempty"`
}

// HoursSummaryResponse totals over a date range
type HoursSummaryResponse struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	TotalMinutes int64   `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	ShiftsWorked int64   `json:"shifts_worked"`
}
