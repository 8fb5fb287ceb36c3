package dto

// ── users ──

// UserListRequest user list filters
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,role"`
	Active  *bool  `form:"active"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UpdateUserRequest profile update
type UpdateUserRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
}

// AssignRoleRequest admin role change
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// SetActiveRequest enable or disable an account
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UserResponse user summary (no secrets)
type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// UserDetailResponse current user with group memberships (GET /auth/me)
type UserDetailResponse struct {
	UserResponse
	Groups []MembershipResponse `json:"groups"`
}

// MembershipResponse one of the caller's groups
type MembershipResponse struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Role      string `json:"role"`
	JoinedAt  string `json:"joined_at"`
}

// CreateUserRequest admin creates an account directly, skipping the application
type CreateUserRequest struct {
	Name  string `json:"name"  binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email,max=255"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
	Role  string `json:"role"  binding:"required,role"`
}

// CreateUserResponse created user plus the one-time password to hand over
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// ResetPasswordResponse admin password reset
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// ImportUserResponse bulk import result
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
	Created []ImportedUser    `json:"created,omitempty"`
}

// ImportUserError why a row was skipped
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportedUser credentials for one imported row
type ImportedUser struct {
	Row          int    `json:"row"`
	Email        string `json:"email"`
	TempPassword string `json:"temp_password"`
}
