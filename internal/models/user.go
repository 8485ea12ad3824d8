package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Username    string `json:"username" gorm:"uniqueIndex"` // Stored lowercase; uniqueness is case-insensitive
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"` // Store hashed password, ignore for JSON serialization
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`

	// Push preferences. A false global flag suppresses every push; the
	// per-category flags gate individual event types.
	NotificationsEnabled         bool `json:"notifications_enabled" gorm:"default:true"`
	ReactionNotificationsEnabled bool `json:"reaction_notifications_enabled" gorm:"default:true"`
	CommentNotificationsEnabled  bool `json:"comment_notifications_enabled" gorm:"default:true"`
	MentionNotificationsEnabled  bool `json:"mention_notifications_enabled" gorm:"default:true"`
}

// UserCompact is the trimmed author/actor shape embedded in feed and inbox
// responses.
type UserCompact struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	FirebaseUID string `json:"firebase_uid,omitempty"`
}

// ToCompact converts a full user record into its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		FirebaseUID: u.FirebaseUID,
	}
}

// SocialGraph is the owner-side follow state the visibility rules evaluate
// against. Both sets hold Firebase UIDs.
type SocialGraph struct {
	FollowingUIDs []string
	FollowerUIDs  []string
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Username    string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID will be provided by the client after Firebase Auth
}

type CreateLocalUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateNotificationPrefsRequest toggles push opt-outs. Pointers so an
// omitted field leaves the current value alone.
type UpdateNotificationPrefsRequest struct {
	NotificationsEnabled         *bool `json:"notifications_enabled,omitempty"`
	ReactionNotificationsEnabled *bool `json:"reaction_notifications_enabled,omitempty"`
	CommentNotificationsEnabled  *bool `json:"comment_notifications_enabled,omitempty"`
	MentionNotificationsEnabled  *bool `json:"mention_notifications_enabled,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID      uint   `json:"user_id"`
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}
