package model

import "time"

// Group member roles.
const (
	GroupRoleMember = "MEMBER"
	GroupRoleAdmin  = "ADMIN"
)

// Group an organization volunteers can join, table groups
type Group struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:varchar(1000)"                             json:"description,omitempty"`
	VersionedModel

	// Filled by aggregate queries, not stored.
	MemberCount int64 `gorm:"->;-:migration" json:"member_count"`
	ShiftCount  int64 `gorm:"->;-:migration" json:"shift_count"`
}

// TableName table name
func (Group) TableName() string { return "groups" }

// GroupMember membership roster, table group_members
type GroupMember struct {
	GroupID  string    `gorm:"type:uuid;primaryKey"                       json:"group_id"`
	UserID   string    `gorm:"type:uuid;primaryKey"                       json:"user_id"`
	Role     string    `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"         json:"joined_at"`

	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
}

// TableName table name
func (GroupMember) TableName() string { return "group_members" }
