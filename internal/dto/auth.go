package dto

// ── auth ──

// RegisterRequest self-registration; creates a PENDING user plus their application
type RegisterRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Phone    string `json:"phone"    binding:"omitempty,max=30"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	ApplicationFields
}

// LoginRequest login by email
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest body form of the refresh token, used when cookies are unavailable
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest change own password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResponse token pair
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in"` // seconds
	RememberMe   bool         `json:"-"`
	User         UserResponse `json:"user"`
}

// RegisterResponse registration result
type RegisterResponse struct {
	User        UserResponse        `json:"user"`
	Application ApplicationResponse `json:"application"`
}
