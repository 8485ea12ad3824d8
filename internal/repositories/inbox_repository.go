package repositories

import (
	"errors"

	"github.com/somnia-app/somnia/backend/internal/models"
	"gorm.io/gorm"
)

// InboxRepository defines the interface for inbox-entry operations
type InboxRepository interface {
	CreateEntry(entry *models.InboxEntry) error
	GetEntryByDedupeKey(key string) (*models.InboxEntry, error)
	GetByRecipientUID(recipientUID string, page, limit int) ([]models.InboxEntry, int64, error)
	GetUnreadCount(recipientUID string) (int64, error)
	MarkAsRead(entryID uint, recipientUID string) error
	MarkAllAsRead(recipientUID string) error
}

type postgresInboxRepository struct {
	db *gorm.DB
}

func NewPostgresInboxRepository(db *gorm.DB) InboxRepository {
	return &postgresInboxRepository{db: db}
}

func (r *postgresInboxRepository) CreateEntry(entry *models.InboxEntry) error {
	err := r.db.Create(entry).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *postgresInboxRepository) GetEntryByDedupeKey(key string) (*models.InboxEntry, error) {
	var entry models.InboxEntry
	if err := r.db.Where("dedupe_key = ?", key).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *postgresInboxRepository) GetByRecipientUID(recipientUID string, page, limit int) ([]models.InboxEntry, int64, error) {
	var entries []models.InboxEntry
	var total int64

	r.db.Model(&models.InboxEntry{}).Where("recipient_uid = ?", recipientUID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("recipient_uid = ?", recipientUID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error

	return entries, total, err
}

func (r *postgresInboxRepository) GetUnreadCount(recipientUID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.InboxEntry{}).Where("recipient_uid = ? AND is_read = false", recipientUID).Count(&count).Error
	return count, err
}

// MarkAsRead flips the read flag; scoped to the recipient so a user cannot
// mark someone else's entry.
func (r *postgresInboxRepository) MarkAsRead(entryID uint, recipientUID string) error {
	res := r.db.Model(&models.InboxEntry{}).
		Where("id = ? AND recipient_uid = ?", entryID, recipientUID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresInboxRepository) MarkAllAsRead(recipientUID string) error {
	return r.db.Model(&models.InboxEntry{}).Where("recipient_uid = ? AND is_read = false", recipientUID).Update("is_read", true).Error
}
