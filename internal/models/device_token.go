package models

import "time"

// MaxDeviceTokens caps how many tokens a single multicast addresses; it
// matches the FCM per-request token limit.
const MaxDeviceTokens = 500

// DeviceToken is one installed client instance eligible for push delivery.
// Rows are removed by the owner (logout) or by the push dispatcher when the
// transport reports the token permanently invalid.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_token"`
	Token     string    `json:"token" gorm:"size:512;uniqueIndex:idx_user_token"`
	Platform  string    `json:"platform" gorm:"size:20"` // ios, android, web
	CreatedAt time.Time `json:"created_at"`
}

// RegisterDeviceTokenRequest defines the request body for registering a token
type RegisterDeviceTokenRequest struct {
	Token    string `json:"token" validate:"required,max=512"`
	Platform string `json:"platform" validate:"omitempty,oneof=ios android web"`
}
