package repositories

import (
	"fmt"

	"github.com/somnia-app/somnia/backend/internal/models"
	"gorm.io/gorm"
)

// SavedDreamRepository defines the interface for bookmark operations
type SavedDreamRepository interface {
	SaveDream(saved *models.SavedDream) error
	UnsaveDream(userID uint, dreamID string) error
	GetSavedDreams(userID uint) ([]models.SavedDream, error)
	GetSavedDreamIDs(userID uint, dreamIDs []string) (map[string]bool, error)
}

// PostgresSavedDreamRepository implements SavedDreamRepository for PostgreSQL
type PostgresSavedDreamRepository struct {
	db *gorm.DB
}

// NewPostgresSavedDreamRepository creates a new PostgresSavedDreamRepository
func NewPostgresSavedDreamRepository(db *gorm.DB) *PostgresSavedDreamRepository {
	return &PostgresSavedDreamRepository{db: db}
}

func (r *PostgresSavedDreamRepository) SaveDream(saved *models.SavedDream) error {
	return r.db.Create(saved).Error
}

func (r *PostgresSavedDreamRepository) UnsaveDream(userID uint, dreamID string) error {
	res := r.db.Where("user_id = ? AND dream_id = ?", userID, dreamID).Delete(&models.SavedDream{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("saved dream: %w", ErrNotFound)
	}
	return nil
}

func (r *PostgresSavedDreamRepository) GetSavedDreams(userID uint) ([]models.SavedDream, error) {
	var saved []models.SavedDream
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, err
}

// GetSavedDreamIDs returns which of dreamIDs the user has bookmarked
func (r *PostgresSavedDreamRepository) GetSavedDreamIDs(userID uint, dreamIDs []string) (map[string]bool, error) {
	saved := make(map[string]bool, len(dreamIDs))
	if len(dreamIDs) == 0 {
		return saved, nil
	}
	var rows []models.SavedDream
	if err := r.db.Where("user_id = ? AND dream_id IN ?", userID, dreamIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		saved[row.DreamID] = true
	}
	return saved, nil
}
