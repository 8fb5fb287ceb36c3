package dto

// ── applications ──

// ApplicationFields applicant-provided fields shared by register and submit
type ApplicationFields struct {
	Motivation            string `json:"motivation"              binding:"required,min=10,max=4000"`
	Experience            string `json:"experience"              binding:"omitempty,max=4000"`
	Availability          string `json:"availability"            binding:"omitempty,max=2000"`
	EmergencyContactName  string `json:"emergency_contact_name"  binding:"omitempty,max=100"`
	EmergencyContactPhone string `json:"emergency_contact_phone" binding:"omitempty,max=30"`
}

// SubmitApplicationRequest (re)apply as a pending user
type SubmitApplicationRequest struct {
	ApplicationFields
}

// ReviewApplicationRequest approve / reject
type ReviewApplicationRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}

// ApplicationListRequest admin list filters
type ApplicationListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED WITHDRAWN"`
}

// ApplicationResponse application with applicant summary
type ApplicationResponse struct {
	ID                    string        `json:"id"`
	Status                string        `json:"status"`
	Motivation            string        `json:"motivation"`
	Experience            string        `json:"experience,omitempty"`
	Availability          string        `json:"availability,omitempty"`
	EmergencyContactName  string        `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string        `json:"emergency_contact_phone,omitempty"`
	Applicant             *UserResponse `json:"applicant,omitempty"`
	ReviewedBy            string        `json:"reviewed_by,omitempty"`
	ReviewedAt            string        `json:"reviewed_at,omitempty"`
	ReviewNotes           string        `json:"review_notes,omitempty"`
	CreatedAt             string        `json:"created_at"`
}
