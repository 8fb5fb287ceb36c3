package model

import "time"

// User roles.
const (
	RoleAdmin      = "ADMIN"
	RoleVolunteer  = "VOLUNTEER"
	RoleGroupAdmin = "GROUP_ADMIN"
	RolePending    = "PENDING"
)

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleVolunteer, RoleGroupAdmin, RolePending:
		return true
	}
	return false
}

// CanVolunteer roles allowed to sign up for and work shifts.
func CanVolunteer(role string) bool {
	return role == RoleVolunteer || role == RoleGroupAdmin || role == RoleAdmin
}

// User volunteers and staff, table users
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string     `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string     `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"role"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	VersionedModel

	Memberships []GroupMember `gorm:"foreignKey:UserID;references:UserID" json:"memberships,omitempty"`
}

// TableName table name
func (User) TableName() string { return "users" }
