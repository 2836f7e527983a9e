package notification

import "time"

// Notification is one persisted, per-user delivered fact. Ownership is
// fixed at creation and the read flag only ever moves false -> true.
type Notification struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID     int64     `gorm:"column:user_id;index:idx_notifications_user_read" json:"userId"`
	Type       string    `gorm:"column:type" json:"type"`
	Message    string    `gorm:"column:message" json:"message"`
	EntityID   *int64    `gorm:"column:entity_id" json:"entityId,omitempty"`
	EntityType string    `gorm:"column:entity_type" json:"entityType,omitempty"`
	Read       bool      `gorm:"column:is_read;index:idx_notifications_user_read" json:"read"`
	CreatedAt  time.Time `gorm:"column:created_at;index:idx_notifications_created" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
