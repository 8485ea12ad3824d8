package repositories

import (
	"github.com/somnia-app/somnia/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for device-token operations
type DeviceTokenRepository interface {
	RegisterToken(token *models.DeviceToken) error
	RemoveToken(userID uint, token string) error
	RemoveTokens(userID uint, tokens []string) (int64, error)
	GetTokensByUserID(userID uint) ([]string, error)
}

// PostgresDeviceTokenRepository implements DeviceTokenRepository for PostgreSQL
type PostgresDeviceTokenRepository struct {
	db *gorm.DB
}

// NewPostgresDeviceTokenRepository creates a new PostgresDeviceTokenRepository
func NewPostgresDeviceTokenRepository(db *gorm.DB) *PostgresDeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

// RegisterToken upserts a token row; re-registering the same token is a no-op
func (r *PostgresDeviceTokenRepository) RegisterToken(token *models.DeviceToken) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoNothing: true,
	}).Create(token).Error
}

func (r *PostgresDeviceTokenRepository) RemoveToken(userID uint, token string) error {
	res := r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceToken{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveTokens deletes a batch of tokens for one user and reports how many
// rows went away. Used by the push dispatcher to prune invalid tokens.
func (r *PostgresDeviceTokenRepository) RemoveTokens(userID uint, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res := r.db.Where("user_id = ? AND token IN ?", userID, tokens).Delete(&models.DeviceToken{})
	return res.RowsAffected, res.Error
}

// GetTokensByUserID returns the user's tokens, newest first, capped at the
// multicast limit.
func (r *PostgresDeviceTokenRepository) GetTokensByUserID(userID uint) ([]string, error) {
	var tokens []string
	err := r.db.Model(&models.DeviceToken{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(models.MaxDeviceTokens).
		Pluck("token", &tokens).Error
	return tokens, err
}
