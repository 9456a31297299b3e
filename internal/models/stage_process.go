package models

import "time"

// StageProcess 阶段工序记录表（流转协调器的来源/目标行）
// ProcessType 标记该行所属的生产阶段；Code 为生成的人读编号。
type StageProcess struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	ProcessType      string    `gorm:"index;not null" json:"process_type"` // WEAVING / FINISHING / ...
	Code             string    `gorm:"uniqueIndex;not null" json:"code"`   // 如 FN20260829-001
	DepartmentID     uint      `gorm:"index;not null" json:"department_id"`
	OrderID          uint      `gorm:"index;not null" json:"order_id"`
	Quantity         Quantity  `gorm:"type:decimal(14,3);not null;default:0" json:"quantity"`
	Unit             string    `gorm:"type:varchar(16);not null;default:m" json:"unit"`
	FabricType       string    `json:"fabric_type"`
	Color            string    `json:"color"`
	Status           string    `gorm:"index;not null;default:planned" json:"status"`
	SourceTransferID *uint     `gorm:"index" json:"source_transfer_id,omitempty"` // 由哪张流转单物化
	SourceProcessID  *uint     `gorm:"index" json:"source_process_id,omitempty"`  // 上游阶段记录
	Notes            string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定表名
func (StageProcess) TableName() string {
	return "stage_processes"
}

// CodeSequence 编号序列表；scope 形如 FN20260829，原子自增替代 max-id+1
type CodeSequence struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Scope     string    `gorm:"uniqueIndex;not null" json:"scope"`
	LastValue int       `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (CodeSequence) TableName() string {
	return "code_sequences"
}
