package models

import "time"

// ProcessRouting 工艺路线表（按产品/计划定义卡片要走的工序数）
type ProcessRouting struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Steps []RoutingStep `gorm:"foreignKey:RoutingID" json:"steps,omitempty"`
}

// TableName 指定表名
func (ProcessRouting) TableName() string {
	return "process_routings"
}

// RoutingStep 工艺路线工步（StepOrder 从 1 连续编号）
type RoutingStep struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	RoutingID     uint      `gorm:"index:idx_routing_step,unique;not null" json:"routing_id"`
	StepOrder     int       `gorm:"index:idx_routing_step,unique;not null" json:"step_order"`
	StepLabel     string    `gorm:"not null" json:"step_label"`
	DepartmentID  uint      `gorm:"index;not null" json:"department_id"`
	ProcessTypeID uint      `gorm:"index" json:"process_type_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (RoutingStep) TableName() string {
	return "routing_steps"
}

// ProcessCard 流程卡表（车间物理卡片，按工艺路线走固定工步序列）
// TotalSteps 在建卡时由路线解析得出。
type ProcessCard struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CardNumber  string    `gorm:"uniqueIndex;not null" json:"card_number"` // 业务键，如 KART-1000
	OrderID     uint      `gorm:"index;not null" json:"order_id"`
	RoutingID   uint      `gorm:"index" json:"routing_id"`
	Quantity    Quantity  `gorm:"type:decimal(14,3);not null;default:0" json:"quantity"`
	Unit        string    `gorm:"type:varchar(16);not null;default:m" json:"unit"`
	CurrentStep int       `gorm:"not null;default:1" json:"current_step"`
	TotalSteps  int       `gorm:"not null;default:3" json:"total_steps"`
	Status      string    `gorm:"index;not null;default:created" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Records []CardProcessRecord `gorm:"foreignKey:CardID" json:"records,omitempty"`
}

// TableName 指定表名
func (ProcessCard) TableName() string {
	return "process_cards"
}

// CardProcessRecord 流程卡工序记录
// 不变式：同一张卡同一时刻至多一条 in_progress 记录，由卡行锁内的条件写入保证。
type CardProcessRecord struct {
	ID                uint       `gorm:"primarykey" json:"id"`
	CardID            uint       `gorm:"index;not null" json:"card_id"`
	MachineID         uint       `gorm:"index;not null" json:"machine_id"`
	OperatorID        uint       `gorm:"index;not null" json:"operator_id"`
	ProcessTypeID     uint       `gorm:"index;not null" json:"process_type_id"`
	DepartmentID      uint       `gorm:"index;not null" json:"department_id"`
	StepOrder         int        `gorm:"not null" json:"step_order"`
	StartTime         time.Time  `gorm:"not null" json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	Status            string     `gorm:"index;not null;default:in_progress" json:"status"`
	QuantityProcessed Quantity   `gorm:"type:decimal(14,3);not null;default:0" json:"quantity_processed"`
	QuantityDefect    Quantity   `gorm:"type:decimal(14,3);not null;default:0" json:"quantity_defect"`
	Notes             string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (CardProcessRecord) TableName() string {
	return "card_process_records"
}
