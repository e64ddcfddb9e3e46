package dto

import "time"

type CreateTweetRequest struct {
	Content string `json:"content" binding:"required,min=1,max=500"`
}

type UpdateTweetRequest struct {
	Content string `json:"content" binding:"required,min=1,max=500"`
}

type TweetResponse struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	Owner     *OwnerResponse `json:"owner,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
