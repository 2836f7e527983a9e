package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// DefaultListLimit bounds list queries when the caller does not ask for a
// specific page size.
const DefaultListLimit = 10

// Repository is the durable store of truth for notifications.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an unread notification, assigning id and created_at.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	if n.Message == "" {
		return ErrEmptyMessage
	}
	if n.UserID == 0 {
		return ErrMissingUser
	}
	n.Read = false
	return r.db.WithContext(ctx).Create(n).Error
}

// ListByUser returns the user's notifications, newest first, capped at
// limit (DefaultListLimit when limit <= 0).
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var out []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListUnreadByUser returns every unread notification, newest first.
func (r *Repository) ListUnreadByUser(ctx context.Context, userID int64) ([]Notification, error) {
	var out []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// MarkRead flips the read flag of the user's notification. Idempotent: an
// already-read notification is returned unchanged. A notification owned by
// someone else is indistinguishable from a missing one.
func (r *Repository) MarkRead(ctx context.Context, id, userID int64) (*Notification, error) {
	var n Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if n.Read {
		return &n, nil
	}

	if err := r.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
		return nil, err
	}
	n.Read = true
	return &n, nil
}

// MarkAllRead flips every unread notification of the user and reports how
// many rows changed.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// Delete removes the user's notification permanently.
func (r *Repository) Delete(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser counts all notifications owned by the user.
func (r *Repository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountUnreadByUser counts unread notifications owned by the user.
func (r *Repository) CountUnreadByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
