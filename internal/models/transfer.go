package models

import "time"

// ProcessTransfer 阶段间流转单（一次数量交接；同一来源可拆分多张）
// TargetProcessID 在目标阶段记录物化前为空。
type ProcessTransfer struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	SourceDepartmentID uint      `gorm:"index;not null" json:"source_department_id"`
	SourceProcessID    uint      `gorm:"index;not null" json:"source_process_id"`
	SourceProcessType  string    `gorm:"index;not null" json:"source_process_type"`
	TargetDepartmentID uint      `gorm:"index;not null" json:"target_department_id"`
	TargetProcessID    *uint     `gorm:"index" json:"target_process_id,omitempty"`
	TargetProcessType  string    `gorm:"not null" json:"target_process_type"`
	Quantity           Quantity  `gorm:"type:decimal(14,3);not null;default:0" json:"quantity"`
	Unit               string    `gorm:"type:varchar(16);not null;default:m" json:"unit"`
	TransferDate       time.Time `gorm:"index;not null" json:"transfer_date"`
	Status             string    `gorm:"index;not null;default:pending" json:"status"`
	Notes              string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedByID        uint      `json:"created_by_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ProcessTransfer) TableName() string {
	return "process_transfers"
}
