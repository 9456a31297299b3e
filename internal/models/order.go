package models

import "time"

// ProductionOrder 生产订单表
// CurrentStatusID 为冷缓存，仅用于列表展示；准确的当前状态以跟踪台账最新事件为准。
type ProductionOrder struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	OrderNo         string     `gorm:"uniqueIndex;not null" json:"order_no"` // 订单编号（业务键）
	CustomerName    string     `gorm:"not null" json:"customer_name"`
	FabricType      string     `json:"fabric_type"` // 织物类型
	Color           string     `json:"color"`
	Quantity        Quantity   `gorm:"type:decimal(14,3);not null;default:0" json:"quantity"`
	Unit            string     `gorm:"type:varchar(16);not null;default:m" json:"unit"`
	DueDate         *time.Time `gorm:"index" json:"due_date"`
	CurrentStatusID uint       `gorm:"index" json:"current_status_id"`
	IsCancelled     bool       `gorm:"not null;default:false" json:"is_cancelled"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Plans []ProductionPlan `gorm:"foreignKey:OrderID" json:"plans,omitempty"`
}

// TableName 指定表名
func (ProductionOrder) TableName() string {
	return "production_orders"
}

// ProductionPlan 生产计划表（订单在某一排产批次下的计划量与工艺路线）
type ProductionPlan struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	RoutingID  uint      `gorm:"index" json:"routing_id"` // 0 表示使用默认路线
	PlannedQty Quantity  `gorm:"type:decimal(14,3);not null;default:0" json:"planned_qty"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ProductionPlan) TableName() string {
	return "production_plans"
}
