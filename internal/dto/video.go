package dto

import "time"

// PublishVideoRequest arrives as multipart form data alongside the
// video and thumbnail files.
type PublishVideoRequest struct {
	Title       string  `form:"title" binding:"required,min=1,max=200"`
	Description string  `form:"description" binding:"max=5000"`
	Duration    float64 `form:"duration" binding:"required,gt=0"`
}

type UpdateVideoRequest struct {
	Title       string `form:"title" binding:"omitempty,min=1,max=200"`
	Description string `form:"description" binding:"omitempty,max=5000"`
}

type VideoResponse struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	VideoURL     string          `json:"video_url"`
	ThumbnailURL string          `json:"thumbnail_url"`
	Duration     float64         `json:"duration"`
	Views        int64           `json:"views"`
	IsPublished  bool            `json:"is_published"`
	Owner        *OwnerResponse  `json:"owner,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OwnerResponse is the sanitized owner embedded in resource views.
type OwnerResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// VideoFilter narrows GET /videos listings.
type VideoFilter struct {
	OwnerID  uint   `form:"owner_id"`
	Username string `form:"username"`
}
