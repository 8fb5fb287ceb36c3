package dto

// ── reports ──

// ReportRangeRequest report filters
type ReportRangeRequest struct {
	DateRangeRequest
	GroupID string `form:"group_id" binding:"omitempty,uuid"`
}

// DashboardResponse admin landing page counters
type DashboardResponse struct {
	ActiveVolunteers    int64   `json:"active_volunteers"`
	PendingApplications int64   `json:"pending_applications"`
	UpcomingShifts      int64   `json:"upcoming_shifts"`
	VacantShifts        int64   `json:"vacant_shifts"`
	HoursThisMonth      float64 `json:"hours_this_month"`
}

// VolunteerHoursResponse one row of the volunteer hours report
type VolunteerHoursResponse struct {
	VolunteerID  string  `json:"volunteer_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	TotalHours   float64 `json:"total_hours"`
	ShiftsWorked int64   `json:"shifts_worked"`
}

// GroupHoursResponse one row of the group hours report
type GroupHoursResponse struct {
	GroupID     string  `json:"group_id"`
	Name        string  `json:"name"`
	MemberCount int64   `json:"member_count"`
	TotalHours  float64 `json:"total_hours"`
}

// ShiftFillResponse one row of the shift fill report
type ShiftFillResponse struct {
	ShiftID           string  `json:"shift_id"`
	Title             string  `json:"title"`
	StartTime         string  `json:"start_time"`
	Status            string  `json:"status"`
	MaxVolunteers     int     `json:"max_volunteers"`
	CurrentVolunteers int     `json:"current_volunteers"`
	FillRate          float64 `json:"fill_rate"`
}
