package notify

import (
	"context"
	"fmt"

	"peer-delivery-api/models"

	"gorm.io/gorm"
)

// Inbox reads and mutates a user's notifications. Every call is scoped to the
// owning user id.
type Inbox struct {
	db *gorm.DB
}

func NewInbox(db *gorm.DB) *Inbox {
	return &Inbox{db: db}
}

// List returns the user's notifications, newest first; unreadOnly filters read ones.
func (i *Inbox) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	var out []models.Notification
	q := i.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Order("created_at desc, notification_id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (i *Inbox) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := i.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one notification; false means it does not belong to the user.
func (i *Inbox) MarkRead(ctx context.Context, userID, id uint) (bool, error) {
	res := i.db.WithContext(ctx).Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark notification read: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkAllRead flags every unread notification and returns how many changed.
func (i *Inbox) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := i.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes one notification; false means it does not belong to the user.
func (i *Inbox) Delete(ctx context.Context, userID, id uint) (bool, error) {
	res := i.db.WithContext(ctx).
		Where("notification_id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return false, fmt.Errorf("delete notification: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
