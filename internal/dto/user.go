package dto

import "time"

// RegisterUserRequest arrives as multipart form data alongside the
// avatar (required) and cover (optional) files.
type RegisterUserRequest struct {
	Username string `form:"username" binding:"required,username"`
	Email    string `form:"email" binding:"required,email"`
	FullName string `form:"full_name" binding:"required,min=2,max=100"`
	Password string `form:"password" binding:"required,min=8,max=100"`
}

type UpdateAccountRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=2,max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CoverURL  string    `json:"cover_url,omitempty"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserLoginRequest accepts either username or email; at least one
// must be present.
type UserLoginRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=30"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type UserLoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access token expiry in seconds
	User         UserResponse `json:"user"`
}

// RefreshTokenRequest is optional in the body; the handler falls back
// to the refreshToken cookie when the body is empty.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ChannelProfileResponse is the public view of a user plus channel
// aggregates.
type ChannelProfileResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	AvatarURL  string    `json:"avatar_url"`
	CoverURL   string    `json:"cover_url,omitempty"`
	VideoCount int64     `json:"video_count"`
	TotalViews int64     `json:"total_views"`
	JoinedAt   time.Time `json:"joined_at"`
}

type WatchHistoryEntryResponse struct {
	Video     VideoResponse `json:"video"`
	WatchedAt time.Time     `json:"watched_at"`
}
