package model

import "time"

// Application statuses.
const (
	ApplicationPending   = "PENDING"
	ApplicationApproved  = "APPROVED"
	ApplicationRejected  = "REJECTED"
	ApplicationWithdrawn = "WITHDRAWN"
)

// Application volunteer application, table applications
type Application struct {
	ApplicationID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	ApplicantID           string     `gorm:"type:uuid;not null"                             json:"applicant_id"`
	Motivation            string     `gorm:"type:text;not null"                             json:"motivation"`
	Experience            string     `gorm:"type:text"                                      json:"experience,omitempty"`
	Availability          string     `gorm:"type:text"                                      json:"availability,omitempty"`
	EmergencyContactName  string     `gorm:"type:varchar(100)"                              json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `gorm:"type:varchar(30)"                               json:"emergency_contact_phone,omitempty"`
	Status                string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	ReviewedBy            *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	ReviewedAt            *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes           string     `gorm:"type:varchar(1000)"                             json:"review_notes,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	Applicant *User `gorm:"foreignKey:ApplicantID;references:UserID" json:"applicant,omitempty"`
	Reviewer  *User `gorm:"foreignKey:ReviewedBy;references:UserID"  json:"reviewer,omitempty"`
}

// TableName table name
func (Application) TableName() string { return "applications" }
