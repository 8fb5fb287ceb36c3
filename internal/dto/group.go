package dto

// ── groups ──

// CreateGroupRequest create group
type CreateGroupRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateGroupRequest update group
type UpdateGroupRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// GroupListRequest list filters
type GroupListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// SetMemberRoleRequest promote / demote a member
type SetMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=MEMBER ADMIN"`
}

// GroupResponse group with counts
type GroupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int64  `json:"member_count"`
	ShiftCount  int64  `json:"shift_count"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// GroupMemberResponse roster entry
type GroupMemberResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}
