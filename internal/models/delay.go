package models

import "time"

// DelayRecord 延期/取消申请表
// 上报后为惰性记录，只有审批会改动订单；ApprovedByID 为空表示待审批。
type DelayRecord struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	OrderID      uint       `gorm:"index;not null" json:"order_id"`
	Reason       string     `gorm:"not null" json:"reason"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	DelayDays    int        `gorm:"not null;default:0" json:"delay_days"`
	NewDueDate   *time.Time `json:"new_due_date,omitempty"`
	IsCancelled  bool       `gorm:"not null;default:false" json:"is_cancelled"`
	ReportedByID uint       `gorm:"index;not null" json:"reported_by_id"`
	ReportedDate time.Time  `gorm:"not null" json:"reported_date"`
	ApprovedByID *uint      `gorm:"index" json:"approved_by_id,omitempty"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (DelayRecord) TableName() string {
	return "delay_records"
}
