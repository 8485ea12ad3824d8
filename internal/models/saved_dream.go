package models

import "time"

// SavedDream represents a bookmarked dream
type SavedDream struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_dream_save"`
	DreamID   string    `json:"dream_id" gorm:"index;uniqueIndex:idx_user_dream_save"`
	CreatedAt time.Time `json:"created_at"`
}
