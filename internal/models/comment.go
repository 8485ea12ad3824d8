package models

import "gorm.io/gorm"

// Comment represents a comment on a dream
type Comment struct {
	gorm.Model
	DreamID string `json:"dream_id" gorm:"index"` // MongoDB ObjectID as string
	UserID  uint   `json:"user_id" gorm:"index"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	DreamID string `json:"dream_id" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
