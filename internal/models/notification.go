package models

import "time"

// Notification 站内通知表（异步任务落地的持久化收件箱）
type Notification struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RecipientID uint      `gorm:"index;not null" json:"recipient_id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	Type        string    `gorm:"index;not null" json:"type"`
	EntityType  string    `gorm:"index" json:"entity_type,omitempty"`
	EntityID    uint      `gorm:"index" json:"entity_id,omitempty"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
